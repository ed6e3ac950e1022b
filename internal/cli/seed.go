package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// DefaultSeedPassword contraseña inicial de los usuarios creados por seed.
const DefaultSeedPassword = "ChangeMe!123"

type seedHub struct {
	Name string
	City string
}

type seedManager struct {
	Username string
	Hub      string
}

var seedHubs = []seedHub{
	{"Hub 1 – Stafford, VA", "Stafford, VA"},
	{"Hub 2 – CT", "Connecticut"},
	{"Hub 3 – Cali", "California"},
	{"Retail", "—"},
}

var seedManagers = []seedManager{
	{"carmen", "Hub 3 – Cali"},
	{"slo", "Hub 1 – Stafford, VA"},
	{"fox", "Hub 2 – CT"},
}

type seedCmd struct {
	env *Env

	admin         string
	password      string
	resetPassword bool
}

func (*seedCmd) Name() string { return "seed" }
func (*seedCmd) Synopsis() string {
	return "crea hubs y gerentes de hub; opcionalmente un administrador"
}
func (*seedCmd) Usage() string {
	return `hubctl seed [-admin <username>] [-password <pwd>] [-reset-password]

  Crea los hubs base y asigna a cada gerente (rol HUB) su hub. Se puede
  ejecutar varias veces: lo existente se reutiliza y solo se corrige rol y hub.
  Las contraseñas se fijan al crear el usuario, salvo con -reset-password.
`
}

func (s *seedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.admin, "admin", "", "Usuario ADMIN a crear o asegurar (vacío = ninguno).")
	f.StringVar(&s.password, "password", DefaultSeedPassword, "Contraseña inicial de los usuarios creados.")
	f.BoolVar(&s.resetPassword, "reset-password", false, "Reescribe también la contraseña de usuarios existentes.")
}

func (s *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := s.env.Container(ctx)
	if err != nil {
		return s.env.fail(err)
	}

	hubs := make(map[string]*entity.Hub, len(seedHubs))
	for _, h := range seedHubs {
		hub, created, err := c.HubUC.GetOrCreate(ctx, h.Name)
		if err != nil {
			return s.env.fail(fmt.Errorf("hub %q: %w", h.Name, err))
		}
		if created && h.City != "" {
			city := h.City
			if _, err := c.HubUC.Update(ctx, hub.ID, dto.UpdateHubRequest{City: &city}); err != nil {
				return s.env.fail(fmt.Errorf("hub %q: %w", h.Name, err))
			}
		}
		hubs[h.Name] = hub
		fmt.Fprintf(s.env.Out, "%s hub: %s\n", verb(created, "Creado", "Encontrado"), h.Name)
	}

	for _, m := range seedManagers {
		if err := s.ensure(ctx, m.Username, entity.RoleHub, hubs[m.Hub].ID); err != nil {
			return s.env.fail(err)
		}
	}
	if s.admin != "" {
		if err := s.ensure(ctx, s.admin, entity.RoleAdmin, ""); err != nil {
			return s.env.fail(err)
		}
	}

	fmt.Fprintln(s.env.Out, "Seed terminado.")
	return subcommands.ExitSuccess
}

func (s *seedCmd) ensure(ctx context.Context, username, role, hubID string) error {
	c, err := s.env.Container(ctx)
	if err != nil {
		return err
	}
	existing, err := c.Repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	in := dto.CreateUserRequest{Username: username, Role: role, HubID: hubID}
	if existing == nil || s.resetPassword {
		in.Password = s.password
	}
	user, created, err := c.AuthUC.EnsureUser(ctx, in)
	if err != nil {
		return fmt.Errorf("usuario %q: %w", username, err)
	}
	fmt.Fprintf(s.env.Out, "%s usuario: %s (%s)\n", verb(created, "Creado", "Actualizado"), user.Username, user.Role)
	return nil
}

func verb(created bool, yes, no string) string {
	if created {
		return yes
	}
	return no
}

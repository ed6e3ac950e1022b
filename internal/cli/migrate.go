package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/jhoicas/hub-inventory/internal/infrastructure/postgres"
	"github.com/jhoicas/hub-inventory/pkg/config"
)

type migrateCmd struct {
	env *Env
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "aplica las migraciones SQL pendientes" }
func (*migrateCmd) Usage() string {
	return `hubctl migrate

  Aplica en orden las migraciones embebidas que no estén en schema_migrations.
  Solo para DB_DRIVER=postgres.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (m *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if m.env.Config.DB.Driver != config.DriverPostgres {
		return m.env.fail(fmt.Errorf("migrate requiere DB_DRIVER=postgres (actual %q)", m.env.Config.DB.Driver))
	}
	pool, err := postgres.NewPool(ctx, m.env.Config.DB)
	if err != nil {
		return m.env.fail(err)
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		return m.env.fail(err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(m.env.Out, "sin migraciones pendientes")
	}
	for _, name := range applied {
		fmt.Fprintln(m.env.Out, "aplicada:", name)
	}
	return subcommands.ExitSuccess
}

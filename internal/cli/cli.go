// Package cli implementa los subcomandos administrativos de hubctl.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/hub-inventory/internal/bootstrap"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/pkg/config"
	"github.com/jhoicas/hub-inventory/pkg/logger"
)

// Env estado compartido por los subcomandos.
type Env struct {
	Config *config.Config
	Log    *logger.Logger
	Out    io.Writer
	Err    io.Writer

	container *bootstrap.Container
	owned     bool
}

// NewEnv construye el entorno; el contenedor se abre al primer uso.
func NewEnv(cfg *config.Config, log *logger.Logger) *Env {
	if log == nil {
		log = logger.Nop()
	}
	return &Env{Config: cfg, Log: log, Out: os.Stdout, Err: os.Stderr}
}

// WithContainer reutiliza un contenedor ya construido (tests).
func (e *Env) WithContainer(c *bootstrap.Container) *Env {
	e.container = c
	e.owned = false
	return e
}

// Container abre (una sola vez) el grafo de dependencias.
func (e *Env) Container(ctx context.Context) (*bootstrap.Container, error) {
	if e.container != nil {
		return e.container, nil
	}
	c, err := bootstrap.New(ctx, e.Config, e.Log)
	if err != nil {
		return nil, err
	}
	e.container, e.owned = c, true
	return c, nil
}

// Close cierra el contenedor si lo abrió este Env.
func (e *Env) Close() error {
	if e.container == nil || !e.owned {
		return nil
	}
	return e.container.Close()
}

// Commands devuelve los subcomandos registrables en un subcommands.Commander.
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&seedCmd{env: env},
		&importSKUsCmd{env: env},
		&exportLogsCmd{env: env},
		&adjustCmd{env: env},
		&receiveCmd{env: env},
		&migrateCmd{env: env},
	}
}

// fail escribe err en Err y devuelve ExitFailure.
func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(e.Err, "error:", err)
	return subcommands.ExitFailure
}

// resolveHub acepta ID o nombre exacto.
func resolveHub(ctx context.Context, c *bootstrap.Container, ref string) (*entity.Hub, error) {
	hub, err := c.Repos.Hubs.GetByID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if hub == nil {
		if hub, err = c.Repos.Hubs.GetByName(ctx, ref); err != nil {
			return nil, err
		}
	}
	if hub == nil {
		return nil, fmt.Errorf("hub %q: %w", ref, domain.ErrNotFound)
	}
	return hub, nil
}

// resolveSKU acepta ID o código.
func resolveSKU(ctx context.Context, c *bootstrap.Container, ref string) (*entity.SKU, error) {
	sku, err := c.Repos.SKUs.GetByID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		if sku, err = c.Repos.SKUs.GetByCode(ctx, ref); err != nil {
			return nil, err
		}
	}
	if sku == nil {
		return nil, fmt.Errorf("sku %q: %w", ref, domain.ErrNotFound)
	}
	return sku, nil
}

// resolveActor devuelve el ID del usuario; vacío si no se indicó.
func resolveActor(ctx context.Context, c *bootstrap.Container, username string) (string, error) {
	if username == "" {
		return "", nil
	}
	u, err := c.Repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", fmt.Errorf("usuario %q: %w", username, domain.ErrUserNotFound)
	}
	return u.ID, nil
}

// hubctl tareas administrativas sobre el ledger de inventario: seed, importación de SKUs,
// exportación del ledger, ajustes, recepción de envíos y migraciones.
//
// Uso: hubctl <subcomando> [flags]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/jhoicas/hub-inventory/internal/cli"
	"github.com/jhoicas/hub-inventory/pkg/config"
	"github.com/jhoicas/hub-inventory/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.NewWithWriter(os.Stderr, cfg.App.LogLevel).Named("hubctl")

	env := cli.NewEnv(cfg, log)
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cli.Commands(env) {
		commander.Register(c, "")
	}

	flag.Parse()
	status := commander.Execute(context.Background())
	if err := env.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar dependencias")
	}
	os.Exit(int(status))
}

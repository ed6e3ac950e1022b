package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
)

type exportLogsCmd struct {
	env *Env

	output string
	hub    string
}

func (*exportLogsCmd) Name() string     { return "export-logs" }
func (*exportLogsCmd) Synopsis() string { return "exporta el ledger en CSV" }
func (*exportLogsCmd) Usage() string {
	return `hubctl export-logs [-o <archivo.csv>] [-hub <id|nombre>]

  Escribe created_at,user,hub,sku,change,note con las entradas más recientes
  primero. Sin -o escribe en la salida estándar; con "-o ." usa el nombre del día.
`
}

func (e *exportLogsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&e.output, "o", "", "Archivo de salida (vacío = stdout, \".\" = inventory_logs_<fecha>.csv).")
	f.StringVar(&e.hub, "hub", "", "Limita la exportación a un hub.")
}

func (e *exportLogsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c, err := e.env.Container(ctx)
	if err != nil {
		return e.env.fail(err)
	}
	scope := auth.Scope{All: true}
	if e.hub != "" {
		hub, err := resolveHub(ctx, c, e.hub)
		if err != nil {
			return e.env.fail(err)
		}
		scope = auth.Scope{HubIDs: []string{hub.ID}}
	}

	var w io.Writer = e.env.Out
	if e.output != "" {
		name := e.output
		if name == "." {
			name = c.Reports.ExportFilename()
		}
		file, err := os.Create(name)
		if err != nil {
			return e.env.fail(err)
		}
		defer file.Close()
		w = file
		defer fmt.Fprintln(e.env.Err, "exportado:", name)
	}
	if err := c.Reports.WriteLogsCSV(ctx, w, scope); err != nil {
		return e.env.fail(err)
	}
	return subcommands.ExitSuccess
}

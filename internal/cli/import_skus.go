package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jhoicas/hub-inventory/internal/application/importer"
)

type importSKUsCmd struct {
	env *Env

	clear            bool
	defaultThreshold int
}

func (*importSKUsCmd) Name() string     { return "import-skus" }
func (*importSKUsCmd) Synopsis() string { return "importa o actualiza SKUs desde un CSV" }
func (*importSKUsCmd) Usage() string {
	return `hubctl import-skus [-clear-hub-assignments] [-default-threshold <n>] <archivo.csv>

  Columnas (sin distinguir mayúsculas): sku,name,barcode,low_stock_threshold,hubs
  hubs es una lista opcional de nombres separada por comas ("Hub 1, Hub 2").
  Los hubs que no existen se crean. Nunca modifica stock.
`
}

func (i *importSKUsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&i.clear, "clear-hub-assignments", false, "Borra las asignaciones previas de cada SKU antes de aplicar las del CSV.")
	f.IntVar(&i.defaultThreshold, "default-threshold", -1, "low_stock_threshold cuando falta o es inválido (por defecto IMPORT_DEFAULT_THRESHOLD).")
}

func (i *importSKUsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(i.env.Err, i.Usage())
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)
	file, err := os.Open(path)
	if err != nil {
		return i.env.fail(fmt.Errorf("CSV no encontrado: %w", err))
	}
	defer file.Close()

	threshold := i.defaultThreshold
	if threshold < 0 {
		threshold = i.env.Config.Inventory.ImportDefaultThreshold
	}

	c, err := i.env.Container(ctx)
	if err != nil {
		return i.env.fail(err)
	}
	res, err := c.Importer.Import(ctx, file, importer.Options{
		ClearAssignments: i.clear,
		DefaultThreshold: threshold,
	})
	if err != nil {
		return i.env.fail(err)
	}
	c.Dashboard.Invalidate(ctx)

	for _, msg := range res.Skipped {
		fmt.Fprintln(i.env.Err, "omitida:", msg)
	}
	fmt.Fprintf(i.env.Out,
		"Importación terminada. Filas: %d, SKUs creados: %d, actualizados: %d, hubs creados: %d, vínculos nuevos: %d, reactivados: %d\n",
		res.Rows, res.SKUsCreated, res.SKUsUpdated, res.HubsCreated, res.LinksCreated, res.LinksActivated)
	return subcommands.ExitSuccess
}

package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/jhoicas/hub-inventory/internal/application/inventory"
)

type adjustCmd struct {
	env *Env

	hub   string
	sku   string
	delta int64
	note  string
	user  string
}

func (*adjustCmd) Name() string     { return "adjust" }
func (*adjustCmd) Synopsis() string { return "ajusta el stock de un SKU en un hub" }
func (*adjustCmd) Usage() string {
	return `hubctl adjust -hub <id|nombre> -sku <id|código> -delta <n> [-note <texto>] [-user <username>]

  Suma delta (puede ser negativo) a la cantidad del par hub+SKU y deja la
  entrada en el ledger. Falla si la cantidad quedaría negativa.
`
}

func (a *adjustCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.hub, "hub", "", "Hub (ID o nombre).")
	f.StringVar(&a.sku, "sku", "", "SKU (ID o código).")
	f.Int64Var(&a.delta, "delta", 0, "Cambio de cantidad.")
	f.StringVar(&a.note, "note", "", "Nota del ajuste.")
	f.StringVar(&a.user, "user", "", "Usuario que firma el ajuste.")
}

func (a *adjustCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if a.hub == "" || a.sku == "" {
		fmt.Fprint(a.env.Err, a.Usage())
		return subcommands.ExitUsageError
	}
	c, err := a.env.Container(ctx)
	if err != nil {
		return a.env.fail(err)
	}
	hub, err := resolveHub(ctx, c, a.hub)
	if err != nil {
		return a.env.fail(err)
	}
	sku, err := resolveSKU(ctx, c, a.sku)
	if err != nil {
		return a.env.fail(err)
	}
	actor, err := resolveActor(ctx, c, a.user)
	if err != nil {
		return a.env.fail(err)
	}

	qty, err := c.AdjustStock.Adjust(ctx, inventory.AdjustInput{
		ActorID: actor,
		HubID:   hub.ID,
		SKUID:   sku.ID,
		Delta:   a.delta,
		Note:    a.note,
	})
	if err != nil {
		return a.env.fail(err)
	}
	fmt.Fprintf(a.env.Out, "%s @ %s: %d\n", sku.Code, hub.Name, qty)
	return subcommands.ExitSuccess
}

type receiveCmd struct {
	env *Env

	user string
}

func (*receiveCmd) Name() string     { return "receive" }
func (*receiveCmd) Synopsis() string { return "recibe un envío pendiente" }
func (*receiveCmd) Usage() string {
	return `hubctl receive [-user <username>] <shipment-id>

  Aplica todas las líneas del envío al hub destino. Un envío ya recibido no
  cambia nada.
`
}

func (r *receiveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.user, "user", "", "Usuario que firma la recepción.")
}

func (r *receiveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(r.env.Err, r.Usage())
		return subcommands.ExitUsageError
	}
	c, err := r.env.Container(ctx)
	if err != nil {
		return r.env.fail(err)
	}
	actor, err := resolveActor(ctx, c, r.user)
	if err != nil {
		return r.env.fail(err)
	}
	id := f.Arg(0)
	if err := c.ReceiveShipment.Receive(ctx, actor, id); err != nil {
		return r.env.fail(err)
	}
	sh, err := c.ShipmentUC.GetByID(ctx, id)
	if err != nil {
		return r.env.fail(err)
	}
	fmt.Fprintf(r.env.Out, "envío %s: %s (%d líneas) en %s\n", sh.ID, sh.Status, len(sh.Lines), sh.DestHubName)
	return subcommands.ExitSuccess
}

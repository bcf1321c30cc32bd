package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/tidwall/sjson"
	"github.com/urfave/cli/v3"

	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/render"
)

func (a *app) fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch a funnel and print its step metrics",
		Flags: append(funnelFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print JSON instead of a table",
			},
		),
		Action: a.fetch,
	}
}

func (a *app) fetch(ctx context.Context, cmd *cli.Command) error {
	d, err := a.definition(cmd)
	if err != nil {
		return err
	}
	v, err := render.Lookup(d.Variant)
	if err != nil {
		return err
	}
	f, err := a.load(ctx, d)
	if err != nil {
		return err
	}

	derived := funnel.Derive(f, v.Reference)
	w := cmd.Root().Writer
	if cmd.Bool("json") {
		doc, err := derivedJSON(d.Name, d.Interval, v.Reference, f, derived)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, doc)
		return err
	}
	printDerived(w, d.Name, d.Interval, v.Reference, f, derived)
	return nil
}

// printDerived writes one row per step and the overall conversion.
func printDerived(w io.Writer, name, interval string, ref funnel.ReferencePolicy, f funnel.Funnel, derived []funnel.Derived) {
	fmt.Fprintf(w, "%s (%s, %% of %s step)\n\n", name, interval, ref)
	if len(derived) == 0 {
		fmt.Fprintln(w, "No data.")
		return
	}
	fmt.Fprintf(w, "%-3s  %-24s  %12s  %8s  %8s  %12s  %8s\n", "#", "Step", "Users", "Of ref", "Conv", "Dropped", "Drop")
	for _, d := range derived {
		drop, dropPct := "-", "-"
		if !d.IsEntry() {
			drop = funnel.FormatCount(d.DropCount)
			dropPct = funnel.FormatPercent(d.DropRate, 1)
		}
		fmt.Fprintf(w, "%-3d  %-24s  %12s  %8s  %8s  %12s  %8s\n",
			d.Index+1,
			d.Label,
			funnel.FormatCount(d.Value),
			funnel.FormatPercent(d.PercentOfMax, 1),
			funnel.FormatPercent(d.CompletionRate, 1),
			drop,
			dropPct,
		)
	}
	fmt.Fprintf(w, "\nOverall conversion: %s\n", funnel.FormatPercent(funnel.Overall(f), 2))
}

// derivedJSON builds the machine-readable form of the table.
func derivedJSON(name, interval string, ref funnel.ReferencePolicy, f funnel.Funnel, derived []funnel.Derived) (string, error) {
	doc := `{}`
	set := func(path string, v any) error {
		var err error
		doc, err = sjson.Set(doc, path, v)
		return err
	}
	if err := set("funnel", name); err != nil {
		return "", err
	}
	if err := set("interval", interval); err != nil {
		return "", err
	}
	if err := set("reference", ref.String()); err != nil {
		return "", err
	}
	if err := set("overall", funnel.Overall(f)); err != nil {
		return "", err
	}
	if err := set("steps", []any{}); err != nil {
		return "", err
	}
	for _, d := range derived {
		base := "steps." + strconv.Itoa(d.Index) + "."
		for _, kv := range []struct {
			key string
			val any
		}{
			{"label", d.Label},
			{"value", d.Value},
			{"percent_of_reference", d.PercentOfMax},
			{"completion_rate", d.CompletionRate},
			{"drop_count", d.DropCount},
			{"drop_rate", d.DropRate},
		} {
			if err := set(base+kv.key, kv.val); err != nil {
				return "", err
			}
		}
	}
	return doc, nil
}

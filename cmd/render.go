package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tonhe/funnel/internal/config"
	"github.com/tonhe/funnel/internal/definition"
	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/funnel"
	"github.com/tonhe/funnel/internal/geometry"
	"github.com/tonhe/funnel/internal/logging"
	"github.com/tonhe/funnel/internal/render"
)

func (a *app) renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a funnel chart to SVG or PNG",
		ArgsUsage: " ",
		Flags: append(funnelFlags(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file, - for stdout",
				Value:   "-",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "svg or png; defaults to the output file's extension, else svg",
			},
			&cli.FloatFlag{
				Name:  "width",
				Usage: "logical width (default from config)",
			},
			&cli.FloatFlag{
				Name:  "height",
				Usage: "logical height (default from config)",
			},
			&cli.FloatFlag{
				Name:  "dpr",
				Usage: "device-pixel ratio for png output (default from config)",
			},
			&cli.StringFlag{
				Name:  "pointer",
				Usage: "X,Y logical pointer position to render hover state at",
			},
		),
		Action: a.render,
	}
}

func (a *app) render(ctx context.Context, cmd *cli.Command) error {
	d, err := a.definition(cmd)
	if err != nil {
		return err
	}
	chart, err := render.NewByName(d.Variant)
	if err != nil {
		return err
	}

	out := cmd.String("out")
	format, err := outputFormat(cmd.String("format"), out)
	if err != nil {
		return err
	}
	size := geometry.Size{W: a.cfg.Width, H: a.cfg.Height}
	if cmd.IsSet("width") {
		size.W = cmd.Float("width")
	}
	if cmd.IsSet("height") {
		size.H = cmd.Float("height")
	}
	if err := config.CheckSize(size.W, size.H); err != nil {
		return err
	}
	ratio := a.cfg.DPR
	if cmd.IsSet("dpr") {
		ratio = cmd.Float("dpr")
	}
	if err := config.CheckDPR(ratio); err != nil {
		return err
	}

	f, err := a.load(ctx, d)
	if err != nil {
		return err
	}

	hover := geometry.NoHit
	if p := cmd.String("pointer"); p != "" {
		pt, err := parsePointer(p)
		if err != nil {
			return err
		}
		hover = chart.HitTest(size, f, pt)
		logging.Get(ctx).Debug().Stringer("kind", hover.Kind).Int("index", hover.Index).Msg("pointer hit")
	}

	var w io.Writer = cmd.Root().Writer
	if out != "-" {
		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	if err := writeChart(w, format, chart, f, size, ratio, hover); err != nil {
		return err
	}
	logging.Get(ctx).Info().Str("variant", d.Variant).Str("format", format).Str("out", out).Msg("rendered chart")
	return nil
}

// load fetches d's funnel once.
func (a *app) load(ctx context.Context, d *definition.Definition) (funnel.Funnel, error) {
	tokens, err := a.tokens(d)
	if err != nil {
		return nil, err
	}
	src, err := d.Source(tokens, a.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	snap, err := engine.NewLoader(src, 1, a.cfg.Timeout).Load(ctx, d.Interval)
	if err != nil {
		return nil, err
	}
	return snap.Funnel, nil
}

// writeChart encodes f drawn by chart in format.
func writeChart(w io.Writer, format string, chart render.Chart, f funnel.Funnel, size geometry.Size, ratio float64, hover geometry.Hit) error {
	switch format {
	case "png":
		return render.RenderPNG(w, chart, f, size, ratio, hover)
	default:
		return render.RenderSVG(w, chart, f, size, hover)
	}
}

// outputFormat picks the format from the flag, or the output file's
// extension.
func outputFormat(flag, out string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
		if format != "png" {
			format = "svg"
		}
	}
	if format != "svg" && format != "png" {
		return "", fmt.Errorf("unknown format %q (want svg or png)", flag)
	}
	return format, nil
}

// parsePointer parses an "X,Y" pair of logical coordinates.
func parsePointer(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("pointer %q: want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("pointer %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("pointer %q: %w", s, err)
	}
	return geometry.Point{X: x, Y: y}, nil
}

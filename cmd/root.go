package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/tonhe/funnel/internal/config"
	"github.com/tonhe/funnel/internal/credential"
	"github.com/tonhe/funnel/internal/definition"
	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/logging"
	"github.com/tonhe/funnel/internal/render"
	"github.com/tonhe/funnel/tui"
	"github.com/tonhe/funnel/tui/styles"
)

// Version is the release version, overridden at build time with -ldflags.
var Version = "0.1.0"

// envMasterKey holds the credential store password for non-interactive use.
const envMasterKey = "FUNNEL_MASTER_KEY"

// app holds state shared by all subcommands once the root Before hook ran.
type app struct {
	paths   config.Paths
	cfgPath string
	cfg     *config.Config
	stdin   io.Reader
}

// Run parses args and executes the matching command.
func Run(ctx context.Context, args []string) error {
	return NewApp(os.Stdin).Run(ctx, args)
}

// NewApp builds the command tree. stdin is read by commands that accept
// secrets on standard input.
func NewApp(stdin io.Reader) *cli.Command {
	a := &app{stdin: stdin}
	return &cli.Command{
		Name:    "funnel",
		Usage:   "conversion funnel charts for the terminal, SVG and PNG",
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to config.toml",
				Sources: cli.EnvVars("FUNNEL_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("FUNNEL_LOG_LEVEL"),
			},
		}, localFlags(viewFlags())...),
		Before: a.before,
		Action: a.view,
		Commands: []*cli.Command{
			a.viewCommand(),
			a.renderCommand(),
			a.fetchCommand(),
			a.credentialCommand(),
			a.configCommand(),
			themesCommand(),
			versionCommand(),
		},
	}
}

// before loads the config and installs a console logger on stderr.
func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return ctx, err
	}
	a.paths = paths
	a.cfgPath = cmd.String("config")
	if a.cfgPath == "" {
		a.cfgPath = paths.ConfigFile()
	}
	cfg, err := config.LoadConfig(a.cfgPath)
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg

	l, err := logging.NewConsole(cmd.Root().ErrWriter, a.logLevel(cmd))
	if err != nil {
		return ctx, err
	}
	return logging.Set(ctx, l), nil
}

func (a *app) logLevel(cmd *cli.Command) string {
	if lvl := cmd.String("log-level"); lvl != "" {
		return lvl
	}
	return a.cfg.LogLevel
}

// funnelFlags select which funnel to load and how.
func funnelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "definition",
			Aliases: []string{"d"},
			Usage:   "funnel definition name in the funnels directory, or a path to a .toml file",
		},
		&cli.BoolFlag{
			Name:  "sample",
			Usage: "use the built-in sample funnel instead of the endpoint",
		},
		&cli.StringFlag{
			Name:  "interval",
			Usage: "time window: " + strings.Join(engine.Intervals, ", "),
		},
		&cli.StringFlag{
			Name:  "variant",
			Usage: "chart variant: " + strings.Join(render.VariantNames(), ", "),
		},
	}
}

func viewFlags() []cli.Flag {
	return append(funnelFlags(), &cli.StringFlag{
		Name:  "theme",
		Usage: "colour theme for this session",
	})
}

// localFlags stops root-level flags from being inherited by subcommands that
// declare their own.
func localFlags(flags []cli.Flag) []cli.Flag {
	for _, f := range flags {
		switch f := f.(type) {
		case *cli.StringFlag:
			f.Local = true
		case *cli.BoolFlag:
			f.Local = true
		}
	}
	return flags
}

func (a *app) viewCommand() *cli.Command {
	return &cli.Command{
		Name:   "view",
		Usage:  "Launch the interactive terminal view (default)",
		Flags:  viewFlags(),
		Action: a.view,
	}
}

// view runs the terminal UI. Logs go to funnel.log since the UI owns the
// terminal.
func (a *app) view(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return fmt.Errorf("unknown command %q", cmd.Args().First())
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("the interactive view needs a terminal; use 'funnel render' or 'funnel fetch'")
	}
	if theme := cmd.String("theme"); theme != "" {
		if _, ok := styles.Lookup(theme); !ok {
			return fmt.Errorf("unknown theme %q; run 'funnel themes' to list them", theme)
		}
		a.cfg.Theme = theme
	}

	d, err := a.definition(cmd)
	if err != nil {
		return err
	}
	tokens, err := a.tokens(d)
	if err != nil {
		return err
	}

	if err := a.paths.Ensure(); err != nil {
		return err
	}
	l, f, err := logging.OpenFile(a.paths.LogFile(), a.logLevel(cmd))
	if err != nil {
		return err
	}
	defer f.Close()
	ctx = logging.Set(ctx, l)

	l.Info().Str("funnel", d.Name).Str("interval", d.Interval).Str("variant", d.Variant).Msg("starting view")
	return tui.Run(ctx, tui.Options{
		Config:         a.cfg,
		Manager:        engine.NewManager(a.cfg.MaxHistory, a.cfg.Timeout),
		Tokens:         tokens,
		Definition:     d,
		DefinitionsDir: a.paths.Definitions(),
		ExportDir:      a.paths.Exports(),
		Version:        Version,
	})
}

// definition resolves the funnel selected by the command's flags.
func (a *app) definition(cmd *cli.Command) (*definition.Definition, error) {
	var d *definition.Definition
	switch name := cmd.String("definition"); {
	case name == "":
		d = definition.FromConfig(a.cfg)
	case strings.HasSuffix(name, ".toml"):
		loaded, err := definition.Load(name)
		if err != nil {
			return nil, fmt.Errorf("loading funnel definition: %w", err)
		}
		loaded.Inherit(a.cfg)
		d = loaded
	default:
		loaded, err := definition.LoadNamed(a.paths.Definitions(), name, a.cfg)
		if err != nil {
			return nil, fmt.Errorf("loading funnel definition: %w", err)
		}
		d = loaded
	}

	if cmd.Bool("sample") {
		d.Sample = true
	}
	if cmd.IsSet("interval") {
		d.Interval = cmd.String("interval")
	}
	if cmd.IsSet("variant") {
		d.Variant = cmd.String("variant")
	}
	return d, d.Validate()
}

// tokens returns the credential lookup for d: FUNNEL_TOKEN first, then the
// encrypted store when one exists. The store is only opened, and the master
// password only asked for, when the environment does not already supply a
// token.
func (a *app) tokens(d *definition.Definition) (credential.TokenSource, error) {
	env := credential.NewEnvSource()
	chain := credential.Chain{env}
	if d.Sample {
		return chain, nil
	}
	if _, err := env.Token(d.Credential); err == nil {
		return chain, nil
	}
	path := a.paths.Credentials()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return chain, nil
	}
	store, err := credential.Open(path, masterPassword)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	return append(chain, store), nil
}

// openStore opens or creates the credential store.
func (a *app) openStore() (*credential.FileStore, error) {
	if err := a.paths.Ensure(); err != nil {
		return nil, err
	}
	store, err := credential.Open(a.paths.Credentials(), masterPassword)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	return store, nil
}

// masterPassword reads the master password from FUNNEL_MASTER_KEY or
// prompts for it.
func masterPassword() ([]byte, error) {
	if key := os.Getenv(envMasterKey); key != "" {
		return []byte(key), nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("credential store is locked; set %s", envMasterKey)
	}
	fmt.Fprint(os.Stderr, "Master password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after password input
	return password, err
}

func themesCommand() *cli.Command {
	return &cli.Command{
		Name:  "themes",
		Usage: "List available themes",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			for _, name := range styles.Names() {
				fmt.Fprintln(w, name)
			}
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintf(cmd.Root().Writer, "funnel v%s\n", Version)
			return nil
		},
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v3"

	"github.com/tonhe/funnel/internal/config"
	"github.com/tonhe/funnel/internal/engine"
	"github.com/tonhe/funnel/internal/render"
	"github.com/tonhe/funnel/tui/styles"
)

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change configuration",
		Commands: []*cli.Command{
			{
				Name:   "path",
				Usage:  "Show the config file path",
				Action: a.configPath,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: a.configShow,
			},
			a.configSetter("endpoint", "URL", "Set the analytics endpoint", func(c *config.Config, v string) error {
				c.Endpoint = v
				return nil
			}),
			a.configSetter("site", "ID", "Set the site ID", func(c *config.Config, v string) error {
				c.SiteID = v
				return nil
			}),
			a.configSetter("interval", "INTERVAL", "Set the default interval", func(c *config.Config, v string) error {
				if err := engine.ValidateInterval(v); err != nil {
					return err
				}
				c.Interval = v
				return nil
			}),
			a.configSetter("variant", "NAME", "Set the default chart variant", func(c *config.Config, v string) error {
				if _, err := render.Lookup(v); err != nil {
					return err
				}
				c.Variant = v
				return nil
			}),
			a.configSetter("credential", "NAME", "Set the credential used for requests", func(c *config.Config, v string) error {
				c.Credential = v
				return nil
			}),
			a.configSetter("theme", "NAME", "Set the default theme", func(c *config.Config, v string) error {
				if _, ok := styles.Lookup(v); !ok {
					return fmt.Errorf("unknown theme %q; run 'funnel themes' to see available themes", v)
				}
				c.Theme = v
				return nil
			}),
		},
	}
}

func (a *app) configPath(ctx context.Context, cmd *cli.Command) error {
	fmt.Fprintln(cmd.Root().Writer, a.cfgPath)
	return nil
}

func (a *app) configShow(ctx context.Context, cmd *cli.Command) error {
	a.cfg.TimeoutStr = a.cfg.Timeout.String()
	return toml.NewEncoder(cmd.Root().Writer).Encode(a.cfg)
}

// configSetter builds a subcommand that validates and stores one value.
func (a *app) configSetter(name, arg, usage string, set func(*config.Config, string) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: arg,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("usage: funnel config %s %s", name, arg)
			}
			v := cmd.Args().First()
			if err := set(a.cfg, v); err != nil {
				return err
			}
			if err := a.saveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "Default %s set to %q.\n", name, v)
			return nil
		},
	}
}

// saveConfig writes the config to disk, creating its directory as needed.
func (a *app) saveConfig() error {
	if a.cfgPath == "" {
		return errors.New("no config path")
	}
	if err := os.MkdirAll(filepath.Dir(a.cfgPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := config.SaveConfig(a.cfg, a.cfgPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

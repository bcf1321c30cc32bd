package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/tonhe/funnel/internal/credential"
)

func (a *app) credentialCommand() *cli.Command {
	return &cli.Command{
		Name:  "credential",
		Usage: "Manage bearer tokens in the encrypted credential store",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stored credentials",
				Action: a.credentialList,
			},
			{
				Name:      "add",
				Usage:     "Add a credential; the token is read from the terminal or stdin",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "free-form note shown by list",
					},
				},
				Action: a.credentialAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a credential",
				ArgsUsage: "NAME",
				Action:    a.credentialRemove,
			},
		},
	}
}

func (a *app) credentialList(ctx context.Context, cmd *cli.Command) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	summaries, err := store.List()
	if err != nil {
		return fmt.Errorf("listing credentials: %w", err)
	}

	w := cmd.Root().Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No credentials configured.")
		return nil
	}
	for _, s := range summaries {
		line := fmt.Sprintf("%-20s  %s  added=%s", s.Name, s.Hint, s.Created.Format("2006-01-02"))
		if s.Description != "" {
			line += "  " + s.Description
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func (a *app) credentialAdd(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.Args().First())
	if name == "" {
		return errors.New("usage: funnel credential add NAME")
	}
	token, err := a.readToken()
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	err = store.Add(credential.Credential{
		Name:        name,
		Token:       token,
		Description: cmd.String("description"),
	})
	if err != nil {
		return fmt.Errorf("adding credential: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "Credential %q added.\n", name)
	return nil
}

func (a *app) credentialRemove(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errors.New("usage: funnel credential remove NAME")
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	if err := store.Remove(name); err != nil {
		return fmt.Errorf("removing credential: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "Credential %q removed.\n", name)
	return nil
}

// readToken prompts for the token without echo on a terminal, and otherwise
// reads the first line of stdin. Tokens are never taken from arguments.
func (a *app) readToken() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

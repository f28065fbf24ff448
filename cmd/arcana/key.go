package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the locally stored OpenAI API key",
		Long: `The stored key is used by 'arcana read' and 'arcana mcp' when no key is
found in the environment. It is kept in a file readable only by you.`,
	}

	setCmd := &cobra.Command{
		Use:   "set [key]",
		Short: "Save an API key (prompts when no argument is given)",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				var err error
				if key, err = c.promptKey(); err != nil {
					return err
				}
			}
			store := c.store()
			if err := store.Save(key); err != nil {
				return err
			}
			_, err := fmt.Fprintf(c.out, "API key saved to %s\n", store.Path())
			return err
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  c.noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := c.store().Clear(); err != nil {
				return err
			}
			_, err := fmt.Fprintln(c.out, "API key removed")
			return err
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print where the key is stored",
		Args:  c.noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(c.out, c.store().Path())
			return err
		},
	}

	cmd.AddCommand(setCmd, clearCmd, pathCmd)
	return cmd
}

// promptKey reads the key without echo on a terminal, or the first line of piped input.
func (c *cli) promptKey() (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.errOut, "OpenAI API key: ") //nolint:errcheck
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.errOut) //nolint:errcheck
		if err != nil {
			return "", fmt.Errorf("read key: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

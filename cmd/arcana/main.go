// Command arcana serves and performs AI tarot readings.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/arcana/internal/infra/keystore"
	"github.com/matiasleandrokruk/arcana/internal/render"
	"github.com/matiasleandrokruk/arcana/internal/version"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// usageError marks bad flags or arguments, which exit with exitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// cli carries the streams and global flags shared by every subcommand.
type cli struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	credentials string
	noColor     bool
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{in: in, out: out, errOut: errOut}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	render.New(errOut, render.WithColor(false)).Error(err)
	var usage usageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitError
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "arcana",
		Short: "AI tarot readings from the terminal, over HTTP or as MCP tools",
		Long: `Arcana draws tarot cards and asks a language model to interpret them.
When no model is reachable it still answers with a reading assembled from
the card keywords.

Examples:
  arcana read "What should I focus on this month?"
  arcana read --spread celtic-cross --style mystical --seed 7 "Where is this going?"
  arcana key set
  arcana serve`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&c.credentials, "credentials", keystore.DefaultPath(), "path of the local credentials file")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.serveCmd(),
		c.readCmd(),
		c.keyCmd(),
		c.spreadsCmd(),
		c.mcpCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  c.noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func (c *cli) renderer() *render.Renderer {
	if c.noColor {
		return render.New(c.out, render.WithColor(false))
	}
	return render.New(c.out)
}

func (c *cli) store() *keystore.Store {
	return keystore.New(c.credentials)
}

func (c *cli) noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

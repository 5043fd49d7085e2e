// Package cli implements mediopsctl, the operator console for MediOps.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tair/mediops/internal/api"
	"github.com/tair/mediops/internal/client"
	"github.com/tair/mediops/internal/datasource"
)

const defaultServer = "http://localhost:8080"

// errReported marks a failure whose message was already printed
var errReported = errors.New("reported")

// App holds the flags and collaborators shared by every command
type App struct {
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	statePath string
	server    string
	token     string
	demo      bool
	format    string

	state  *State
	client *client.Client
	source datasource.DataSource
}

// NewApp creates a console writing to out and errOut
func NewApp(out, errOut io.Writer) *App {
	return &App{out: out, errOut: errOut, now: time.Now}
}

// Execute runs mediopsctl with os.Args and returns the process exit code
func Execute() int {
	app := NewApp(os.Stdout, os.Stderr)
	if err := app.RootCommand().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", describe(err))
		}
		return 1
	}
	return 0
}

// RootCommand builds the command tree
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mediopsctl",
		Short:         "Operator console for the MediOps pharmacy service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", "", "MediOps server URL (env MEDIOPS_URL)")
	flags.StringVar(&a.token, "token", "", "session token (env MEDIOPS_TOKEN)")
	flags.BoolVar(&a.demo, "demo", false, "use built-in demo data; writes are disabled")
	flags.StringVarP(&a.format, "output", "o", FormatTable, "output format: table, json or yaml")
	flags.StringVar(&a.statePath, "state", DefaultStatePath(), "path of the local state file")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.consumersCommand(),
		a.inventoryCommand(),
		a.analyticsCommand(),
		a.emergenciesCommand(),
		a.dashboardCommand(),
		a.subscriptionCommand(),
	)
	return root
}

// setup resolves server and token (flag, then env, then state) and picks
// the data source once
func (a *App) setup() error {
	if err := validFormat(a.format); err != nil {
		return err
	}

	state, err := LoadState(a.statePath)
	if err != nil {
		return err
	}
	a.state = state

	a.server = firstNonEmpty(a.server, os.Getenv("MEDIOPS_URL"), state.Server, defaultServer)
	a.token = firstNonEmpty(a.token, os.Getenv("MEDIOPS_TOKEN"), state.Token)

	c, err := client.New(a.server, client.WithToken(a.token))
	if err != nil {
		return err
	}
	a.client = c

	if a.demo {
		a.source = datasource.NewStaticDataSource(a.now())
	} else {
		a.source = datasource.NewRemoteDataSource(c)
	}
	return nil
}

func (a *App) printer() printer {
	return printer{out: a.out, format: a.format}
}

func (a *App) saveState() error {
	return a.state.Save(a.statePath)
}

// notify prints the one-line outcome of a write. A failure is returned as
// errReported so the exit code is 1 without printing twice.
func (a *App) notify(action string, err error) error {
	if err != nil {
		fmt.Fprintf(a.errOut, "%s failed: %s\n", action, describe(err))
		return errReported
	}
	fmt.Fprintf(a.out, "%s succeeded\n", action)
	return nil
}

// describe renders an error for an operator
func describe(err error) error {
	var (
		invalid      *api.ValidationFailure
		notFound     *api.NotFoundFailure
		unauthorized *api.UnauthorizedFailure
		transport    *api.TransportFailure
		internal     *api.InternalFailure
	)
	switch {
	case errors.Is(err, datasource.ErrReadOnly):
		return errors.New("write actions are disabled in demo mode")
	case errors.As(err, &invalid):
		if invalid.Field != "" {
			return fmt.Errorf("%s: %s", invalid.Field, invalid.Message)
		}
		return errors.New(invalid.Message)
	case errors.As(err, &notFound):
		return errors.New(notFound.Message)
	case errors.As(err, &unauthorized):
		return fmt.Errorf("%s; run mediopsctl login", unauthorized.Message)
	case errors.As(err, &transport):
		return fmt.Errorf("server unreachable: %v", transport.Cause)
	case errors.As(err, &internal):
		return errors.New(internal.Message)
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

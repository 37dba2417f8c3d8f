// Package cli provides the roster command line.
package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the loaded App.
type RootOptions struct {
	Pretty  bool
	Verbose bool

	// OperationID tags the log lines and the response of one invocation.
	OperationID string

	load Loader
	app  *App
}

// App returns the App loaded for the running command.
func (o *RootOptions) App() *App {
	return o.app
}

// NewRootCommand creates the root command with every subcommand attached.
func NewRootCommand(load Loader) *cobra.Command {
	opts := &RootOptions{load: load}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Club roster backed by Google Sheets",
		Long: `roster manages club members, events and attendance stored in
Google Sheets tabs, and reports attendance statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.load == nil {
				return fmt.Errorf("no loader configured")
			}
			opts.OperationID = uuid.NewString()
			app, err := opts.load(cmd.Context(), opts)
			if err != nil {
				return opts.fail(cmd, err)
			}
			opts.app = app
			cmd.SetContext(app.Logger.WithOperationID(cmd.Context(), opts.OperationID))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "Indent JSON output")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging and error chains in output")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewMembersCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewAttendanceCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

// NewInitCommand writes the header row of every tab that lacks one.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write missing header rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := rootOpts.App()

			written := map[string]bool{}
			steps := []struct {
				name string
				run  func() (bool, error)
			}{
				{"members", func() (bool, error) { return app.Members.InitializeSchema(ctx) }},
				{"events", func() (bool, error) { return app.Events.InitializeSchema(ctx) }},
				{"attendance", func() (bool, error) { return app.Attendance.InitializeSchema(ctx) }},
			}
			for _, step := range steps {
				wrote, err := step.run()
				if err != nil {
					return rootOpts.fail(cmd, fmt.Errorf("initializing %s: %w", step.name, err))
				}
				written[step.name] = wrote
			}
			return rootOpts.succeed(cmd, map[string]any{"headers_written": written})
		},
	}
}

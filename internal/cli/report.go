package cli

import (
	"time"

	"github.com/angelmondragon/roster-sheets/pkg/validate"
	"github.com/spf13/cobra"
)

const defaultTrendDays = 30

// NewReportCommand groups the attendance reports.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Attendance statistics",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "event <event-id>",
		Short: "Attendance summary for one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := rootOpts.App().Reports.EventSummary(cmd.Context(), args[0])
			return rootOpts.respond(cmd, summary, err)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "member <member-id>",
		Short: "Attendance statistics for one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := rootOpts.App().Reports.MemberStats(cmd.Context(), args[0])
			return rootOpts.respond(cmd, stats, err)
		},
	})
	cmd.AddCommand(newTrendsCommand(rootOpts))
	return cmd
}

func newTrendsCommand(rootOpts *RootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Per-event attendance over recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return rootOpts.fail(cmd, validate.Field("flag", "days", "must be positive"))
			}
			window := time.Duration(days) * 24 * time.Hour
			trends, err := rootOpts.App().Reports.Trends(cmd.Context(), window)
			return rootOpts.respond(cmd, trends, err)
		},
	}
	cmd.Flags().IntVar(&days, "days", defaultTrendDays, "Window length in days")
	return cmd
}

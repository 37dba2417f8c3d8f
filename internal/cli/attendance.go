package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/angelmondragon/roster-sheets/internal/attendance"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
	"github.com/spf13/cobra"
)

// NewAttendanceCommand groups the attendance subcommands.
func NewAttendanceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record and list attendance",
	}
	cmd.AddCommand(newCheckInCommand(rootOpts))
	cmd.AddCommand(newCheckOutCommand(rootOpts))
	cmd.AddCommand(newAbsentCommand(rootOpts))
	cmd.AddCommand(newAttendanceListCommand(rootOpts))
	cmd.AddCommand(newAttendanceDeleteCommand(rootOpts))
	cmd.AddCommand(newAttendanceBulkCommand(rootOpts))
	return cmd
}

func newCheckInCommand(rootOpts *RootOptions) *cobra.Command {
	var recordedBy string
	cmd := &cobra.Command{
		Use:   "check-in <event-id> <member-id>",
		Short: "Mark a member present as of now",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rootOpts.App().Attendance.CheckIn(cmd.Context(), args[0], args[1], recordedBy)
			return rootOpts.respond(cmd, r, err)
		},
	}
	cmd.Flags().StringVar(&recordedBy, "by", "", "Who recorded it (default system)")
	return cmd
}

func newCheckOutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-out <event-id> <member-id>",
		Short: "Stamp a member's check-out time as now",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rootOpts.App().Attendance.CheckOut(cmd.Context(), args[0], args[1])
			return rootOpts.respond(cmd, r, err)
		},
	}
}

func newAbsentCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		excused    bool
		recordedBy string
	)
	cmd := &cobra.Command{
		Use:   "absent <event-id> <member-id>",
		Short: "Mark a member absent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rootOpts.App().Attendance.MarkAbsent(cmd.Context(), args[0], args[1], excused, recordedBy)
			return rootOpts.respond(cmd, r, err)
		},
	}
	cmd.Flags().BoolVar(&excused, "excused", false, "Record the absence as excused")
	cmd.Flags().StringVar(&recordedBy, "by", "", "Who recorded it (default system)")
	return cmd
}

func newAttendanceListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		eventID, memberID string
		pf                pageFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := rootOpts.App().Attendance
			ctx := cmd.Context()
			var (
				records []attendance.Record
				err     error
			)
			switch {
			case eventID != "" && memberID != "":
				var r attendance.Record
				r, err = store.ForPair(ctx, eventID, memberID)
				records = []attendance.Record{r}
			case eventID != "":
				records, err = store.ByEvent(ctx, eventID)
			case memberID != "":
				records, err = store.ByMember(ctx, memberID)
			default:
				records, err = store.List(ctx)
			}
			page, err := paginate(records, err, pf, func(r attendance.Record) string { return r.ID })
			return rootOpts.respond(cmd, page, err)
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "Only records for this event")
	cmd.Flags().StringVar(&memberID, "member", "", "Only records for this member")
	pf.bind(cmd)
	return cmd
}

func newAttendanceDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Remove an attendance record",
		Long: `Clears the record's row. The blank row stays in the sheet and is
skipped on later reads.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := rootOpts.App().Attendance.Delete(cmd.Context(), args[0])
			return rootOpts.respond(cmd, map[string]string{"record_id": args[0]}, err)
		},
	}
}

func newAttendanceBulkCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <event-id> <entries.json>",
		Short: "Record attendance for many members at once",
		Long: `Reads a JSON array of entries, each with member_id and optional
status, check_in_time, check_out_time, notes and recorded_by. Failed
entries are reported and skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return rootOpts.fail(cmd, fmt.Errorf("reading %s: %w", args[1], err))
			}
			var entries []attendance.BulkEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return rootOpts.fail(cmd, validate.Field("flag", "entries", fmt.Sprintf("invalid JSON: %v", err)))
			}
			res := rootOpts.App().Attendance.BulkRecord(cmd.Context(), args[0], entries)
			return rootOpts.succeed(cmd, newImportReport(res))
		},
	}
}

package cli

import (
	"context"

	"github.com/angelmondragon/roster-sheets/internal/events"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
	"github.com/spf13/cobra"
)

const defaultUpcomingDays = 30

// NewEventsCommand groups the event subcommands.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage club events",
	}
	cmd.AddCommand(newEventsListCommand(rootOpts))
	cmd.AddCommand(newEventsGetCommand(rootOpts))
	cmd.AddCommand(newEventsCreateCommand(rootOpts))
	cmd.AddCommand(newEventsUpdateCommand(rootOpts))
	cmd.AddCommand(newEventsCancelCommand(rootOpts))
	cmd.AddCommand(newEventsUpcomingCommand(rootOpts))
	return cmd
}

type eventsListOptions struct {
	date      string
	from      string
	to        string
	eventType string
	status    string
	mandatory bool
	page      pageFlags
}

func newEventsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &eventsListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := listEvents(cmd.Context(), rootOpts.App().Events, opts)
			page, err := paginate(list, err, opts.page, eventKey)
			return rootOpts.respond(cmd, page, err)
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "Events on one date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.from, "from", "", "Start of a date range, used with --to")
	cmd.Flags().StringVar(&opts.to, "to", "", "End of a date range, used with --from")
	cmd.Flags().StringVar(&opts.eventType, "type", "", "Event type (practice, game, meeting, social)")
	cmd.Flags().StringVar(&opts.status, "status", "", "Event status (scheduled, cancelled, completed)")
	cmd.Flags().BoolVar(&opts.mandatory, "mandatory", false, "Only mandatory events")
	opts.page.bind(cmd)
	cmd.MarkFlagsRequiredTogether("from", "to")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	return cmd
}

func eventKey(e events.Event) string { return e.ID }

// listEvents applies at most one filter, in flag declaration order.
func listEvents(ctx context.Context, store *events.Store, opts *eventsListOptions) ([]events.Event, error) {
	switch {
	case opts.date != "":
		if err := requireDate("date", opts.date); err != nil {
			return nil, err
		}
		return store.ByDate(ctx, opts.date)
	case opts.from != "" || opts.to != "":
		return store.ByDateRange(ctx, opts.from, opts.to)
	case opts.eventType != "":
		eventType, err := parseFlag("type", opts.eventType, enums.ParseEventType)
		if err != nil {
			return nil, err
		}
		return store.ByType(ctx, eventType)
	case opts.status != "":
		status, err := parseFlag("status", opts.status, enums.ParseEventStatus)
		if err != nil {
			return nil, err
		}
		return store.ByStatus(ctx, status)
	case opts.mandatory:
		return store.Mandatory(ctx)
	default:
		return store.List(ctx)
	}
}

func newEventsGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <event-id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := rootOpts.App().Events.Get(cmd.Context(), args[0])
			return rootOpts.respond(cmd, e, err)
		},
	}
}

// eventFields are the editable event columns as flags.
type eventFields struct {
	name         string
	eventType    string
	date         string
	start        string
	end          string
	location     string
	description  string
	mandatory    bool
	maxAttendees int
	createdBy    string
	status       string
}

func (f *eventFields) bind(cmd *cobra.Command, defaultType string) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "Event name")
	flags.StringVar(&f.eventType, "type", defaultType, "Event type (practice, game, meeting, social)")
	flags.StringVar(&f.date, "date", "", "Event date (YYYY-MM-DD)")
	flags.StringVar(&f.start, "start", "", "Start time (HH:MM)")
	flags.StringVar(&f.end, "end", "", "End time (HH:MM)")
	flags.StringVar(&f.location, "location", "", "Location")
	flags.StringVar(&f.description, "description", "", "Description")
	flags.BoolVar(&f.mandatory, "mandatory", false, "Attendance is mandatory")
	flags.IntVar(&f.maxAttendees, "max-attendees", 0, "Attendee cap, 0 for none")
	flags.StringVar(&f.createdBy, "created-by", "", "Member id of the organizer")
}

// apply copies every flag the user set onto e. The type is also applied when
// e has none, so the flag default reaches new events.
func (f *eventFields) apply(cmd *cobra.Command, e *events.Event) error {
	flags := cmd.Flags()
	text := []struct {
		flag string
		dst  *string
		src  string
	}{
		{"name", &e.Name, f.name},
		{"date", &e.Date, f.date},
		{"start", &e.StartTime, f.start},
		{"end", &e.EndTime, f.end},
		{"location", &e.Location, f.location},
		{"description", &e.Description, f.description},
		{"created-by", &e.CreatedBy, f.createdBy},
	}
	for _, field := range text {
		if flags.Changed(field.flag) {
			*field.dst = field.src
		}
	}
	if flags.Changed("mandatory") {
		e.IsMandatory = f.mandatory
	}
	if flags.Changed("max-attendees") {
		e.MaxAttendees = f.maxAttendees
	}

	if flags.Changed("type") || e.Type == "" {
		eventType, err := parseFlag("type", f.eventType, enums.ParseEventType)
		if err != nil {
			return err
		}
		e.Type = eventType
	}
	if flags.Changed("status") {
		status, err := parseFlag("status", f.status, enums.ParseEventStatus)
		if err != nil {
			return err
		}
		e.Status = status
	}
	return nil
}

func newEventsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	fields := &eventFields{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule an event",
		Long: `Schedules an event. The event is rejected when it overlaps another
non-cancelled event on the same date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var e events.Event
			if err := fields.apply(cmd, &e); err != nil {
				return rootOpts.fail(cmd, err)
			}
			created, err := rootOpts.App().Events.Create(cmd.Context(), e)
			return rootOpts.respond(cmd, created, err)
		},
	}
	fields.bind(cmd, string(enums.EventTypePractice))
	for _, name := range []string{"name", "date", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEventsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	fields := &eventFields{}
	cmd := &cobra.Command{
		Use:   "update <event-id>",
		Short: "Change fields of an event",
		Long: `Rewrites the event's row with the flags that were given. Columns
without a flag keep their stored value. Overlaps are not re-checked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := rootOpts.App().Events
			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			if err := fields.apply(cmd, &e); err != nil {
				return rootOpts.fail(cmd, err)
			}
			updated, err := store.Update(cmd.Context(), e)
			return rootOpts.respond(cmd, updated, err)
		},
	}
	fields.bind(cmd, "")
	cmd.Flags().StringVar(&fields.status, "status", "", "Event status (scheduled, cancelled, completed)")
	return cmd
}

func newEventsCancelCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <event-id>",
		Short: "Cancel an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := rootOpts.App().Events.Delete(cmd.Context(), args[0])
			return rootOpts.respond(cmd, map[string]string{
				"event_id": args[0],
				"status":   string(enums.EventStatusCancelled),
			}, err)
		},
	}
}

func newEventsUpcomingCommand(rootOpts *RootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List scheduled events in the next days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return rootOpts.fail(cmd, validate.Field("flag", "days", "must not be negative"))
			}
			list, err := rootOpts.App().Events.Upcoming(cmd.Context(), days)
			return rootOpts.respond(cmd, list, err)
		},
	}
	cmd.Flags().IntVar(&days, "days", defaultUpcomingDays, "Window length in days")
	return cmd
}

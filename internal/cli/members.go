package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/importer"
	"github.com/angelmondragon/roster-sheets/internal/members"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/spf13/cobra"
)

// NewMembersCommand groups the member subcommands.
func NewMembersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage club members",
	}
	cmd.AddCommand(newMembersListCommand(rootOpts))
	cmd.AddCommand(newMembersGetCommand(rootOpts))
	cmd.AddCommand(newMembersCreateCommand(rootOpts))
	cmd.AddCommand(newMembersUpdateCommand(rootOpts))
	cmd.AddCommand(newMembersDeleteCommand(rootOpts))
	cmd.AddCommand(newMembersImportCommand(rootOpts))
	return cmd
}

type membersListOptions struct {
	status  string
	role    string
	payment string
	page    pageFlags
}

func newMembersListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &membersListOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := listMembers(cmd.Context(), rootOpts.App().Members, opts)
			page, err := paginate(list, err, opts.page, func(m members.Member) string { return m.ID })
			return rootOpts.respond(cmd, page, err)
		},
	}
	cmd.Flags().StringVar(&opts.status, "status", "", "Membership status (active, inactive, suspended)")
	cmd.Flags().StringVar(&opts.role, "role", "", "Role (member, exec)")
	cmd.Flags().StringVar(&opts.payment, "payment", "", "Payment status (paid, pending, overdue)")
	opts.page.bind(cmd)
	return cmd
}

// listMembers applies at most one filter; the first set flag wins.
func listMembers(ctx context.Context, store *members.Store, opts *membersListOptions) ([]members.Member, error) {
	switch {
	case opts.status != "":
		status, err := parseFlag("status", opts.status, enums.ParseMembershipStatus)
		if err != nil {
			return nil, err
		}
		return store.ByStatus(ctx, status)
	case opts.role != "":
		role, err := parseFlag("role", opts.role, enums.ParseMemberRole)
		if err != nil {
			return nil, err
		}
		return store.ByRole(ctx, role)
	case opts.payment != "":
		payment, err := parseFlag("payment", opts.payment, enums.ParsePaymentStatus)
		if err != nil {
			return nil, err
		}
		return store.ByPaymentStatus(ctx, payment)
	default:
		return store.List(ctx)
	}
}

func newMembersGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <member-id>",
		Short: "Show one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := rootOpts.App().Members.Get(cmd.Context(), args[0])
			return rootOpts.respond(cmd, m, err)
		},
	}
}

// memberFields are the editable member columns as flags.
type memberFields struct {
	firstName        string
	lastName         string
	email            string
	phone            string
	wixUserID        string
	role             string
	status           string
	payment          string
	joinDate         string
	graduationYear   string
	major            string
	emergencyContact string
	emergencyPhone   string
	notes            string
}

func (f *memberFields) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.firstName, "first-name", "", "First name")
	flags.StringVar(&f.lastName, "last-name", "", "Last name")
	flags.StringVar(&f.email, "email", "", "Email address")
	flags.StringVar(&f.phone, "phone", "", "Phone number, 10 or 11 digits")
	flags.StringVar(&f.wixUserID, "wix-user-id", "", "Linked Wix account id")
	flags.StringVar(&f.role, "role", "", "Role (member, exec)")
	flags.StringVar(&f.status, "status", "", "Membership status (active, inactive, suspended)")
	flags.StringVar(&f.payment, "payment", "", "Payment status (paid, pending, overdue)")
	flags.StringVar(&f.joinDate, "join-date", "", "Join date (YYYY-MM-DD)")
	flags.StringVar(&f.graduationYear, "graduation-year", "", "Expected graduation year")
	flags.StringVar(&f.major, "major", "", "Major")
	flags.StringVar(&f.emergencyContact, "emergency-contact", "", "Emergency contact name")
	flags.StringVar(&f.emergencyPhone, "emergency-phone", "", "Emergency contact phone")
	flags.StringVar(&f.notes, "notes", "", "Free-form notes")
}

// apply copies every flag the user set onto m. Unset flags leave m alone.
func (f *memberFields) apply(cmd *cobra.Command, m *members.Member) error {
	flags := cmd.Flags()
	text := []struct {
		flag string
		dst  *string
		src  string
	}{
		{"first-name", &m.FirstName, f.firstName},
		{"last-name", &m.LastName, f.lastName},
		{"email", &m.Email, f.email},
		{"phone", &m.Phone, f.phone},
		{"wix-user-id", &m.WixUserID, f.wixUserID},
		{"join-date", &m.JoinDate, f.joinDate},
		{"graduation-year", &m.GraduationYear, f.graduationYear},
		{"major", &m.Major, f.major},
		{"emergency-contact", &m.EmergencyContact, f.emergencyContact},
		{"emergency-phone", &m.EmergencyPhone, f.emergencyPhone},
		{"notes", &m.Notes, f.notes},
	}
	for _, field := range text {
		if flags.Changed(field.flag) {
			*field.dst = field.src
		}
	}

	if flags.Changed("role") {
		role, err := parseFlag("role", f.role, enums.ParseMemberRole)
		if err != nil {
			return err
		}
		m.Role = role
	}
	if flags.Changed("status") {
		status, err := parseFlag("status", f.status, enums.ParseMembershipStatus)
		if err != nil {
			return err
		}
		m.MembershipStatus = status
	}
	if flags.Changed("payment") {
		payment, err := parseFlag("payment", f.payment, enums.ParsePaymentStatus)
		if err != nil {
			return err
		}
		m.PaymentStatus = payment
	}
	return nil
}

func newMembersCreateCommand(rootOpts *RootOptions) *cobra.Command {
	fields := &memberFields{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m members.Member
			if err := fields.apply(cmd, &m); err != nil {
				return rootOpts.fail(cmd, err)
			}
			created, err := rootOpts.App().Members.Create(cmd.Context(), m)
			return rootOpts.respond(cmd, created, err)
		},
	}
	fields.bind(cmd)
	for _, name := range []string{"first-name", "last-name", "email", "phone"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newMembersUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	fields := &memberFields{}
	cmd := &cobra.Command{
		Use:   "update <member-id>",
		Short: "Change fields of a member",
		Long: `Rewrites the member's row with the flags that were given. Columns
without a flag keep their stored value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := rootOpts.App().Members
			m, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			if err := fields.apply(cmd, &m); err != nil {
				return rootOpts.fail(cmd, err)
			}
			updated, err := store.Update(cmd.Context(), m)
			return rootOpts.respond(cmd, updated, err)
		},
	}
	fields.bind(cmd)
	return cmd
}

func newMembersDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <member-id>",
		Short: "Mark a member inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := rootOpts.App().Members.Delete(cmd.Context(), args[0])
			return rootOpts.respond(cmd, map[string]string{"member_id": args[0]}, err)
		},
	}
}

// importReport is the output of a batch command.
type importReport struct {
	Successful int      `json:"successful"`
	Total      int      `json:"total"`
	Errors     []string `json:"errors,omitempty"`
}

func newImportReport(res importer.Result) importReport {
	report := importReport{Successful: res.Successful, Total: res.Total}
	for _, err := range res.Errors() {
		report.Errors = append(report.Errors, err.Error())
	}
	return report
}

func newMembersImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create members from a CSV export",
		Long: `Reads a CSV whose header row names member columns, either as they
appear on the sheet ("First Name") or in snake_case ("first_name").
Rows that fail validation are reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := rootOpts.App()
			f, err := os.Open(args[0])
			if err != nil {
				return rootOpts.fail(cmd, fmt.Errorf("opening %s: %w", args[0], err))
			}
			defer f.Close()

			now := app.Now()
			parsed, err := importer.ParseMembersCSV(f, now)
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			// Row i is stamped i seconds after now so one batch never
			// reuses a second-resolution id.
			for i := range parsed {
				if parsed[i].ID == "" {
					parsed[i].ID = members.GenerateID(now.Add(time.Duration(i) * time.Second))
				}
			}

			res := importer.Run(cmd.Context(), parsed, func(ctx context.Context, m members.Member) error {
				_, err := app.Members.Create(ctx, m)
				return err
			})
			app.Logger.Info(app.Logger.WithFields(cmd.Context(), map[string]any{
				"successful": res.Successful,
				"total":      res.Total,
			}), "member import completed")
			return rootOpts.succeed(cmd, newImportReport(res))
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/analytics"
	"github.com/angelmondragon/roster-sheets/internal/attendance"
	"github.com/angelmondragon/roster-sheets/internal/events"
	"github.com/angelmondragon/roster-sheets/internal/members"
	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/pkg/config"
	"github.com/angelmondragon/roster-sheets/pkg/logger"
	"github.com/angelmondragon/roster-sheets/pkg/sheets"
)

// App is what a command runs against.
type App struct {
	Members    *members.Store
	Events     *events.Store
	Attendance *attendance.Store
	Reports    analytics.Service
	Logger     *logger.Logger
	Now        func() time.Time
}

// Loader builds the App once flags are parsed. It runs before every
// subcommand.
type Loader func(ctx context.Context, opts *RootOptions) (*App, error)

// NewApp binds the three stores to the configured spreadsheets. cache may be nil.
func NewApp(cfg *config.Config, values sheets.Values, cache sheetstore.RangeCache, logg *logger.Logger, now func() time.Time) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if values == nil {
		return nil, fmt.Errorf("sheets values required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}

	opts := []sheetstore.Option{sheetstore.WithLogger(logg), sheetstore.WithClock(now)}
	if cache != nil {
		opts = append(opts, sheetstore.WithCache(cache))
	}

	sc := cfg.Sheets
	app := &App{
		Members: members.NewStore(values, sc.MembersSheetID, sc.MembersTab, opts...),
		Events: events.NewStore(values, sc.EventsSheetID, sc.EventsTab, events.Policy{
			RequireEndAfterStart: cfg.Events.RequireEndAfterStart,
		}, opts...),
		Attendance: attendance.NewStore(values, sc.AttendanceSheetID, sc.AttendanceTab, opts...),
		Logger:     logg,
		Now:        now,
	}

	reports, err := analytics.NewService(app.Attendance, now)
	if err != nil {
		return nil, err
	}
	app.Reports = reports
	return app, nil
}

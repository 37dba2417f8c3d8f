// Package events persists club events in the Events tab.
package events

import (
	"context"
	"fmt"
	"sort"

	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/sheets"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
)

// Policy holds the optional checks applied on writes.
type Policy struct {
	// RequireEndAfterStart rejects events whose end time is not later than
	// their start time.
	RequireEndAfterStart bool
}

// Store reads and writes events. Deleting an event cancels it.
type Store struct {
	table  *sheetstore.Table[Event]
	policy Policy
}

func NewStore(values sheets.Values, spreadsheetID, tab string, policy Policy, opts ...sheetstore.Option) *Store {
	return &Store{
		table:  sheetstore.New(values, spreadsheetID, tab, codec(), sheetstore.SoftDelete, opts...),
		policy: policy,
	}
}

func (s *Store) checkPolicy(e Event) error {
	if s.policy.RequireEndAfterStart && !e.EndsAfterStart() {
		return validate.Field(entityName, "end_time", "must be after start_time")
	}
	return nil
}

// Create validates e and appends it unless its id exists or it overlaps a
// non-cancelled event on the same date. Both cases yield CONFLICT.
func (s *Store) Create(ctx context.Context, e Event) (Event, error) {
	now := s.table.Now()
	if e.ID == "" {
		e.ID = GenerateID(now)
	}
	e, err := NewEvent(e, now)
	if err != nil {
		return Event{}, err
	}
	if err := s.checkPolicy(e); err != nil {
		return Event{}, err
	}
	return s.table.Insert(ctx, e, s.conflictGuard)
}

// conflictGuard rejects overlapping events. A failed scan lets the insert
// proceed.
func (s *Store) conflictGuard(ctx context.Context, candidate Event) error {
	sameDay, err := s.ByDate(ctx, candidate.Date)
	if err != nil {
		logg := s.table.Logger()
		logg.WarnErr(ctx, "event conflict check failed, continuing", err)
		return nil
	}
	for _, existing := range sameDay {
		if existing.Status == enums.EventStatusCancelled {
			continue
		}
		if candidate.Overlaps(existing) {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf(
				"event %s overlaps %s (%s %s-%s)",
				candidate.Name, existing.ID, existing.Date, existing.StartTime, existing.EndTime,
			)).WithDetails(map[string]string{"conflicting_event_id": existing.ID})
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]Event, error) {
	return s.table.ReadAll(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (Event, error) {
	return s.table.FindByID(ctx, id)
}

// Update validates e and rewrites its row. Overlaps are not re-checked.
func (s *Store) Update(ctx context.Context, e Event) (Event, error) {
	e = e.withDefaults()
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	if err := s.checkPolicy(e); err != nil {
		return Event{}, err
	}
	return s.table.Update(ctx, e)
}

// Delete cancels the event. The row stays in the sheet.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.table.Delete(ctx, id)
}

func (s *Store) ByDate(ctx context.Context, date string) ([]Event, error) {
	return s.table.Find(ctx, func(e Event) bool { return e.Date == date })
}

// ByDateRange returns events dated within [from, to], both YYYY-MM-DD.
func (s *Store) ByDateRange(ctx context.Context, from, to string) ([]Event, error) {
	if !validate.IsDate(from) {
		return nil, validate.Field(entityName, "from", "must be a date in YYYY-MM-DD format")
	}
	if !validate.IsDate(to) {
		return nil, validate.Field(entityName, "to", "must be a date in YYYY-MM-DD format")
	}
	events, err := s.table.Find(ctx, func(e Event) bool { return e.Date >= from && e.Date <= to })
	if err != nil {
		return nil, err
	}
	sortChronologically(events)
	return events, nil
}

func (s *Store) ByType(ctx context.Context, eventType enums.EventType) ([]Event, error) {
	return s.table.Find(ctx, func(e Event) bool { return e.Type == eventType })
}

func (s *Store) ByStatus(ctx context.Context, status enums.EventStatus) ([]Event, error) {
	return s.table.Find(ctx, func(e Event) bool { return e.Status == status })
}

func (s *Store) Mandatory(ctx context.Context) ([]Event, error) {
	return s.table.Find(ctx, func(e Event) bool { return e.IsMandatory })
}

// Upcoming returns scheduled events dated from today through today+days,
// ordered by date then start time.
func (s *Store) Upcoming(ctx context.Context, days int) ([]Event, error) {
	now := s.table.Now()
	from := now.Format(validate.DateLayout)
	to := now.AddDate(0, 0, days).Format(validate.DateLayout)

	events, err := s.table.Find(ctx, func(e Event) bool {
		return e.Status == enums.EventStatusScheduled && e.Date >= from && e.Date <= to
	})
	if err != nil {
		return nil, err
	}
	sortChronologically(events)
	return events, nil
}

func sortChronologically(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		left, _ := clockMinutes(events[i].StartTime)
		right, _ := clockMinutes(events[j].StartTime)
		return left < right
	})
}

// InitializeSchema writes the header row when the tab lacks it.
func (s *Store) InitializeSchema(ctx context.Context) (bool, error) {
	return s.table.EnsureHeaders(ctx)
}

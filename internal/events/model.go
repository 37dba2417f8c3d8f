package events

import (
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
)

const entityName = "event"

var headers = []string{
	"Event ID", "Event Name", "Event Type", "Event Date", "Start Time",
	"End Time", "Location", "Description", "Is Mandatory", "Max Attendees",
	"Created By", "Status", "Created At", "Updated At",
}

// Event is one row of the Events tab. Date is YYYY-MM-DD and the times are
// HH:MM on that date.
type Event struct {
	ID           string            `json:"event_id" validate:"required"`
	Name         string            `json:"event_name" validate:"required"`
	Type         enums.EventType   `json:"event_type" validate:"roster_enum"`
	Date         string            `json:"event_date" validate:"roster_date"`
	StartTime    string            `json:"start_time" validate:"roster_clock"`
	EndTime      string            `json:"end_time" validate:"roster_clock"`
	Location     string            `json:"location"`
	Description  string            `json:"description,omitempty"`
	IsMandatory  bool              `json:"is_mandatory"`
	MaxAttendees int               `json:"max_attendees,omitempty" validate:"min=0"`
	CreatedBy    string            `json:"created_by"`
	Status       enums.EventStatus `json:"status" validate:"roster_enum"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

// NewEvent defaults the status to scheduled, validates and stamps timestamps.
func NewEvent(e Event, now time.Time) (Event, error) {
	e = e.withDefaults()
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	stamp := sheetstore.FormatTimestamp(now)
	if e.CreatedAt == "" {
		e.CreatedAt = stamp
	}
	e.UpdatedAt = stamp
	return e, nil
}

func (e Event) withDefaults() Event {
	if e.Status == "" {
		e.Status = enums.EventStatusScheduled
	}
	return e
}

func (e Event) Validate() error {
	return validate.Struct(entityName, e)
}

// StartsAt combines the date and start time in loc.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	return combine(e.Date, e.StartTime, loc)
}

func (e Event) EndsAt(loc *time.Location) (time.Time, error) {
	return combine(e.Date, e.EndTime, loc)
}

func combine(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(validate.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, err
	}
	at, err := validate.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, loc), nil
}

// DurationMinutes is end minus start on the same date. Events that run past
// midnight come out negative.
func (e Event) DurationMinutes() int {
	start, okStart := clockMinutes(e.StartTime)
	end, okEnd := clockMinutes(e.EndTime)
	if !okStart || !okEnd {
		return 0
	}
	return end - start
}

// EndsAfterStart reports whether the end time is strictly later than the start.
func (e Event) EndsAfterStart() bool {
	return e.DurationMinutes() > 0
}

// Overlaps reports whether both events share a date and their time windows
// intersect. Touching windows (one ends when the other starts) do not overlap.
func (e Event) Overlaps(other Event) bool {
	if e.Date != other.Date {
		return false
	}
	start, ok1 := clockMinutes(e.StartTime)
	end, ok2 := clockMinutes(e.EndTime)
	otherStart, ok3 := clockMinutes(other.StartTime)
	otherEnd, ok4 := clockMinutes(other.EndTime)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return start < otherEnd && end > otherStart
}

func clockMinutes(value string) (int, bool) {
	t, err := validate.ParseClock(value)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// ToRow renders the 14 columns in header order.
func (e Event) ToRow() []string {
	maxAttendees := ""
	if e.MaxAttendees > 0 {
		maxAttendees = strconv.Itoa(e.MaxAttendees)
	}
	return []string{
		e.ID,
		e.Name,
		e.Type.String(),
		e.Date,
		e.StartTime,
		e.EndTime,
		e.Location,
		e.Description,
		strconv.FormatBool(e.IsMandatory),
		maxAttendees,
		e.CreatedBy,
		e.Status.String(),
		e.CreatedAt,
		e.UpdatedAt,
	}
}

// FromRow parses a sheet row. The mandatory flag is read case-insensitively
// and a max-attendees cell that is not all digits reads as unset.
func FromRow(row []string) (Event, error) {
	cells := make([]string, len(headers))
	copy(cells, row)

	e := Event{
		ID:           cells[0],
		Name:         cells[1],
		Type:         enums.EventType(cells[2]),
		Date:         cells[3],
		StartTime:    cells[4],
		EndTime:      cells[5],
		Location:     cells[6],
		Description:  cells[7],
		IsMandatory:  strings.EqualFold(cells[8], "true"),
		MaxAttendees: parseCount(cells[9]),
		CreatedBy:    cells[10],
		Status:       enums.EventStatus(cells[11]),
		CreatedAt:    cells[12],
		UpdatedAt:    cells[13],
	}
	e = e.withDefaults()
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func parseCount(value string) int {
	if value == "" {
		return 0
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// Headers returns a copy of the canonical column names.
func Headers() []string {
	return append([]string(nil), headers...)
}

// GenerateID returns EVT_ followed by the second-resolution timestamp.
func GenerateID(now time.Time) string {
	return "EVT_" + sheetstore.IDStamp(now)
}

func codec() sheetstore.Codec[Event] {
	return sheetstore.Codec[Event]{
		Entity:  entityName,
		Headers: headers,
		ToRow:   Event.ToRow,
		FromRow: FromRow,
		ID:      func(e Event) string { return e.ID },
		Touch: func(e Event, now time.Time) Event {
			e.UpdatedAt = sheetstore.FormatTimestamp(now)
			return e
		},
		MarkDeleted: func(e Event) Event {
			e.Status = enums.EventStatusCancelled
			return e
		},
	}
}

package attendance

import (
	"time"

	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
)

const entityName = "attendance record"

var headers = []string{
	"Record ID", "Event ID", "Member ID", "Attendance Status",
	"Check In Time", "Check Out Time", "Notes", "Recorded By",
	"Created At", "Updated At",
}

// Record is one row of the Attendance tab. Event and member ids are not
// checked against their tabs.
type Record struct {
	ID           string                 `json:"record_id" validate:"required"`
	EventID      string                 `json:"event_id" validate:"required"`
	MemberID     string                 `json:"member_id" validate:"required"`
	Status       enums.AttendanceStatus `json:"attendance_status" validate:"roster_enum"`
	CheckInTime  string                 `json:"check_in_time,omitempty" validate:"omitempty,roster_clock"`
	CheckOutTime string                 `json:"check_out_time,omitempty" validate:"omitempty,roster_clock"`
	Notes        string                 `json:"notes,omitempty"`
	RecordedBy   string                 `json:"recorded_by"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// NewRecord validates r and stamps timestamps, keeping CreatedAt when set.
func NewRecord(r Record, now time.Time) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	stamp := sheetstore.FormatTimestamp(now)
	if r.CreatedAt == "" {
		r.CreatedAt = stamp
	}
	r.UpdatedAt = stamp
	return r, nil
}

func (r Record) Validate() error {
	return validate.Struct(entityName, r)
}

// Attended reports whether the status counts toward attendance.
func (r Record) Attended() bool {
	return r.Status == enums.AttendanceStatusPresent || r.Status == enums.AttendanceStatusLate
}

// DurationMinutes is check-out minus check-in. A check-out earlier than the
// check-in is taken to be on the next day. ok is false unless both are set.
func (r Record) DurationMinutes() (minutes int, ok bool) {
	if r.CheckInTime == "" || r.CheckOutTime == "" {
		return 0, false
	}
	in, err := validate.ParseClock(r.CheckInTime)
	if err != nil {
		return 0, false
	}
	out, err := validate.ParseClock(r.CheckOutTime)
	if err != nil {
		return 0, false
	}
	if out.Before(in) {
		out = out.Add(24 * time.Hour)
	}
	return int(out.Sub(in) / time.Minute), true
}

// ToRow renders the 10 columns in header order.
func (r Record) ToRow() []string {
	return []string{
		r.ID,
		r.EventID,
		r.MemberID,
		r.Status.String(),
		r.CheckInTime,
		r.CheckOutTime,
		r.Notes,
		r.RecordedBy,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

// FromRow parses a sheet row, padding short rows.
func FromRow(row []string) (Record, error) {
	cells := make([]string, len(headers))
	copy(cells, row)

	r := Record{
		ID:           cells[0],
		EventID:      cells[1],
		MemberID:     cells[2],
		Status:       enums.AttendanceStatus(cells[3]),
		CheckInTime:  cells[4],
		CheckOutTime: cells[5],
		Notes:        cells[6],
		RecordedBy:   cells[7],
		CreatedAt:    cells[8],
		UpdatedAt:    cells[9],
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Headers returns a copy of the canonical column names.
func Headers() []string {
	return append([]string(nil), headers...)
}

// GenerateID returns ATT_<event>_<member>_ followed by the second-resolution
// timestamp.
func GenerateID(eventID, memberID string, now time.Time) string {
	return "ATT_" + eventID + "_" + memberID + "_" + sheetstore.IDStamp(now)
}

func codec() sheetstore.Codec[Record] {
	return sheetstore.Codec[Record]{
		Entity:  entityName,
		Headers: headers,
		ToRow:   Record.ToRow,
		FromRow: FromRow,
		ID:      func(r Record) string { return r.ID },
		Touch: func(r Record, now time.Time) Record {
			r.UpdatedAt = sheetstore.FormatTimestamp(now)
			return r
		},
	}
}

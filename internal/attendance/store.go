// Package attendance persists per-event attendance in the Attendance tab.
package attendance

import (
	"context"
	"fmt"

	"github.com/angelmondragon/roster-sheets/internal/importer"
	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/sheets"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
)

const (
	defaultRecorder = "system"
	noteAbsent      = "Marked absent"
	noteExcused     = "Marked absent (excused)"
)

// Store reads and writes attendance records. Deleting clears the row.
type Store struct {
	table *sheetstore.Table[Record]
}

func NewStore(values sheets.Values, spreadsheetID, tab string, opts ...sheetstore.Option) *Store {
	return &Store{
		table: sheetstore.New(values, spreadsheetID, tab, codec(), sheetstore.HardDelete, opts...),
	}
}

// Record writes r. When the event/member pair already has a record, that row
// is rewritten with r's fields and keeps its id and created-at; otherwise r is
// appended under a generated id if it has none.
func (s *Store) Record(ctx context.Context, r Record) (Record, error) {
	existing, found, err := s.findPair(ctx, r.EventID, r.MemberID)
	if err != nil {
		return Record{}, err
	}
	if found {
		r.ID = existing.ID
		r.CreatedAt = existing.CreatedAt
		if err := r.Validate(); err != nil {
			return Record{}, err
		}
		logg := s.table.Logger()
		logg.Info(logg.WithRecordID(ctx, r.ID), "attendance already recorded, updating in place")
		return s.table.Update(ctx, r)
	}

	now := s.table.Now()
	if r.ID == "" {
		r.ID = GenerateID(r.EventID, r.MemberID, now)
	}
	r, err = NewRecord(r, now)
	if err != nil {
		return Record{}, err
	}
	return s.table.Insert(ctx, r)
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	return s.table.ReadAll(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	return s.table.FindByID(ctx, id)
}

// ForPair returns the first record for the event/member pair, or NOT_FOUND.
func (s *Store) ForPair(ctx context.Context, eventID, memberID string) (Record, error) {
	r, found, err := s.findPair(ctx, eventID, memberID)
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no attendance for member %s at event %s", memberID, eventID))
	}
	return r, nil
}

func (s *Store) findPair(ctx context.Context, eventID, memberID string) (Record, bool, error) {
	matches, err := s.table.Find(ctx, func(r Record) bool {
		return r.EventID == eventID && r.MemberID == memberID
	})
	if err != nil {
		return Record{}, false, err
	}
	if len(matches) == 0 {
		return Record{}, false, nil
	}
	return matches[0], true, nil
}

func (s *Store) ByEvent(ctx context.Context, eventID string) ([]Record, error) {
	return s.table.Find(ctx, func(r Record) bool { return r.EventID == eventID })
}

func (s *Store) ByMember(ctx context.Context, memberID string) ([]Record, error) {
	return s.table.Find(ctx, func(r Record) bool { return r.MemberID == memberID })
}

func (s *Store) Update(ctx context.Context, r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return s.table.Update(ctx, r)
}

// Delete clears the record's row. The blank row is left in place.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.table.Delete(ctx, id)
}

// CheckIn marks the member present with the current time as check-in.
func (s *Store) CheckIn(ctx context.Context, eventID, memberID, recordedBy string) (Record, error) {
	if recordedBy == "" {
		recordedBy = defaultRecorder
	}
	clock := s.table.Now().Format(validate.ClockLayout)

	existing, found, err := s.findPair(ctx, eventID, memberID)
	if err != nil {
		return Record{}, err
	}
	if found {
		existing.Status = enums.AttendanceStatusPresent
		existing.CheckInTime = clock
		existing.RecordedBy = recordedBy
		return s.Update(ctx, existing)
	}
	return s.Record(ctx, Record{
		EventID:     eventID,
		MemberID:    memberID,
		Status:      enums.AttendanceStatusPresent,
		CheckInTime: clock,
		RecordedBy:  recordedBy,
	})
}

// CheckOut stamps the current time as check-out. The member must already
// have a record for the event.
func (s *Store) CheckOut(ctx context.Context, eventID, memberID string) (Record, error) {
	existing, err := s.ForPair(ctx, eventID, memberID)
	if err != nil {
		return Record{}, err
	}
	existing.CheckOutTime = s.table.Now().Format(validate.ClockLayout)
	return s.Update(ctx, existing)
}

// MarkAbsent records an absence, excused or not. New records carry a note
// saying so; existing ones keep their notes.
func (s *Store) MarkAbsent(ctx context.Context, eventID, memberID string, excused bool, recordedBy string) (Record, error) {
	if recordedBy == "" {
		recordedBy = defaultRecorder
	}
	status, note := enums.AttendanceStatusAbsent, noteAbsent
	if excused {
		status, note = enums.AttendanceStatusExcused, noteExcused
	}

	existing, found, err := s.findPair(ctx, eventID, memberID)
	if err != nil {
		return Record{}, err
	}
	if found {
		existing.Status = status
		existing.RecordedBy = recordedBy
		return s.Update(ctx, existing)
	}
	return s.Record(ctx, Record{
		EventID:    eventID,
		MemberID:   memberID,
		Status:     status,
		Notes:      note,
		RecordedBy: recordedBy,
	})
}

// BulkEntry is one member's line in a bulk submission.
type BulkEntry struct {
	MemberID     string                 `json:"member_id"`
	Status       enums.AttendanceStatus `json:"status,omitempty"`
	CheckInTime  string                 `json:"check_in_time,omitempty"`
	CheckOutTime string                 `json:"check_out_time,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
	RecordedBy   string                 `json:"recorded_by,omitempty"`
}

// BulkRecord records every entry for eventID, continuing past failures.
// Status defaults to present and the recorder to "system".
func (s *Store) BulkRecord(ctx context.Context, eventID string, entries []BulkEntry) importer.Result {
	res := importer.Run(ctx, entries, func(ctx context.Context, e BulkEntry) error {
		status := e.Status
		if status == "" {
			status = enums.AttendanceStatusPresent
		}
		recordedBy := e.RecordedBy
		if recordedBy == "" {
			recordedBy = defaultRecorder
		}
		_, err := s.Record(ctx, Record{
			EventID:      eventID,
			MemberID:     e.MemberID,
			Status:       status,
			CheckInTime:  e.CheckInTime,
			CheckOutTime: e.CheckOutTime,
			Notes:        e.Notes,
			RecordedBy:   recordedBy,
		})
		return err
	})

	logg := s.table.Logger()
	logg.Info(logg.WithFields(ctx, map[string]any{
		"event_id":   eventID,
		"successful": res.Successful,
		"total":      res.Total,
	}), "bulk attendance completed")
	return res
}

// InitializeSchema writes the header row when the tab lacks it.
func (s *Store) InitializeSchema(ctx context.Context) (bool, error) {
	return s.table.EnsureHeaders(ctx)
}

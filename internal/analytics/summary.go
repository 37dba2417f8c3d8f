// Package analytics derives attendance statistics from attendance records.
package analytics

import (
	"time"

	"github.com/angelmondragon/roster-sheets/internal/attendance"
	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/shopspring/decimal"
)

// StatusCounts tallies records by attendance status.
type StatusCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
	Late    int `json:"late"`
}

func (c *StatusCounts) add(status enums.AttendanceStatus) {
	switch status {
	case enums.AttendanceStatusPresent:
		c.Present++
	case enums.AttendanceStatusAbsent:
		c.Absent++
	case enums.AttendanceStatusExcused:
		c.Excused++
	case enums.AttendanceStatusLate:
		c.Late++
	}
}

// Attended is present plus late.
func (c StatusCounts) Attended() int {
	return c.Present + c.Late
}

// EventSummary describes attendance at one event.
type EventSummary struct {
	EventID      string `json:"event_id,omitempty"`
	TotalRecords int    `json:"total_records"`
	StatusCounts
	AttendanceRate float64 `json:"attendance_rate"`
	// AverageDuration is in minutes over attended records with both times set.
	AverageDuration float64 `json:"average_duration"`
}

// MemberStats describes one member's attendance across events.
type MemberStats struct {
	MemberID    string `json:"member_id,omitempty"`
	TotalEvents int    `json:"total_events"`
	StatusCounts
	AttendanceRate float64 `json:"attendance_rate"`
	TotalHours     float64 `json:"total_hours"`
}

// EventTrend is the attendance at one event inside a trend window.
type EventTrend struct {
	EventID        string  `json:"event_id"`
	AttendanceRate float64 `json:"attendance_rate"`
	Attendees      int     `json:"attendees"`
}

// Trends summarizes recent attendance grouped by event, in the order events
// first appear in the records.
type Trends struct {
	EventsCount     int          `json:"events_count"`
	EventIDs        []string     `json:"event_ids"`
	AttendanceRates []float64    `json:"attendance_rates"`
	TotalAttendees  []int        `json:"total_attendees"`
	Events          []EventTrend `json:"events"`
}

// SummarizeEvent computes counts, rate and average duration for records.
func SummarizeEvent(records []attendance.Record) EventSummary {
	s := EventSummary{TotalRecords: len(records)}
	var durations []int
	for _, r := range records {
		s.add(r.Status)
		if !r.Attended() {
			continue
		}
		if minutes, ok := r.DurationMinutes(); ok {
			durations = append(durations, minutes)
		}
	}
	s.AttendanceRate = percent(s.Attended(), s.TotalRecords)
	if len(durations) > 0 {
		total := 0
		for _, d := range durations {
			total += d
		}
		s.AverageDuration = ratio(int64(total), int64(len(durations)))
	}
	return s
}

// SummarizeMember computes counts, rate and total attended hours for records.
func SummarizeMember(records []attendance.Record) MemberStats {
	s := MemberStats{TotalEvents: len(records)}
	minutes := 0
	for _, r := range records {
		s.add(r.Status)
		if !r.Attended() {
			continue
		}
		if d, ok := r.DurationMinutes(); ok {
			minutes += d
		}
	}
	s.AttendanceRate = percent(s.Attended(), s.TotalEvents)
	s.TotalHours = ratio(int64(minutes), 60)
	return s
}

// ComputeTrends keeps records created at or after now-window and summarizes
// them per event. Records with a missing or malformed created-at are skipped.
func ComputeTrends(records []attendance.Record, now time.Time, window time.Duration) Trends {
	cutoff := now.Add(-window)
	order := []string{}
	grouped := map[string]*StatusCounts{}
	totals := map[string]int{}

	for _, r := range records {
		created, err := sheetstore.ParseTimestamp(r.CreatedAt, now.Location())
		if err != nil || created.Before(cutoff) {
			continue
		}
		counts, ok := grouped[r.EventID]
		if !ok {
			counts = &StatusCounts{}
			grouped[r.EventID] = counts
			order = append(order, r.EventID)
		}
		counts.add(r.Status)
		totals[r.EventID]++
	}

	t := Trends{
		EventsCount:     len(order),
		EventIDs:        order,
		AttendanceRates: make([]float64, 0, len(order)),
		TotalAttendees:  make([]int, 0, len(order)),
		Events:          make([]EventTrend, 0, len(order)),
	}
	for _, id := range order {
		attended := grouped[id].Attended()
		rate := percent(attended, totals[id])
		t.AttendanceRates = append(t.AttendanceRates, rate)
		t.TotalAttendees = append(t.TotalAttendees, attended)
		t.Events = append(t.Events, EventTrend{EventID: id, AttendanceRate: rate, Attendees: attended})
	}
	return t
}

// percent is part/total*100 rounded to one decimal, 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(1).
		InexactFloat64()
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den)).Round(1).InexactFloat64()
}

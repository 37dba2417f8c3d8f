package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/attendance"
)

// Reader is the attendance read surface the reports need.
type Reader interface {
	List(ctx context.Context) ([]attendance.Record, error)
}

// Service builds attendance reports. Each report reads the attendance tab once.
type Service interface {
	EventSummary(ctx context.Context, eventID string) (EventSummary, error)
	MemberStats(ctx context.Context, memberID string) (MemberStats, error)
	Trends(ctx context.Context, window time.Duration) (Trends, error)
}

type service struct {
	reader Reader
	now    func() time.Time
}

// NewService builds a report service over reader. now defaults to time.Now.
func NewService(reader Reader, now func() time.Time) (Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("attendance reader required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{reader: reader, now: now}, nil
}

func (s *service) EventSummary(ctx context.Context, eventID string) (EventSummary, error) {
	records, err := s.reader.List(ctx)
	if err != nil {
		return EventSummary{}, err
	}
	summary := SummarizeEvent(filter(records, func(r attendance.Record) bool { return r.EventID == eventID }))
	summary.EventID = eventID
	return summary, nil
}

func (s *service) MemberStats(ctx context.Context, memberID string) (MemberStats, error) {
	records, err := s.reader.List(ctx)
	if err != nil {
		return MemberStats{}, err
	}
	stats := SummarizeMember(filter(records, func(r attendance.Record) bool { return r.MemberID == memberID }))
	stats.MemberID = memberID
	return stats, nil
}

func (s *service) Trends(ctx context.Context, window time.Duration) (Trends, error) {
	records, err := s.reader.List(ctx)
	if err != nil {
		return Trends{}, err
	}
	return ComputeTrends(records, s.now(), window), nil
}

func filter(records []attendance.Record, keep func(attendance.Record) bool) []attendance.Record {
	out := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

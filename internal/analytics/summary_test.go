package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/attendance"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)

func rec(eventID, memberID string, status enums.AttendanceStatus, in, out, created string) attendance.Record {
	return attendance.Record{
		ID:           "ATT_" + eventID + "_" + memberID,
		EventID:      eventID,
		MemberID:     memberID,
		Status:       status,
		CheckInTime:  in,
		CheckOutTime: out,
		CreatedAt:    created,
	}
}

func TestSummarizeEvent(t *testing.T) {
	records := []attendance.Record{
		rec("EVT_1", "MBR_1", enums.AttendanceStatusPresent, "18:00", "20:00", ""),
		rec("EVT_1", "MBR_2", enums.AttendanceStatusPresent, "18:05", "19:55", ""),
		rec("EVT_1", "MBR_3", enums.AttendanceStatusAbsent, "", "", ""),
		rec("EVT_1", "MBR_4", enums.AttendanceStatusLate, "18:30", "", ""),
	}

	s := SummarizeEvent(records)
	assert.Equal(t, 4, s.TotalRecords)
	assert.Equal(t, 2, s.Present)
	assert.Equal(t, 1, s.Absent)
	assert.Equal(t, 1, s.Late)
	assert.Equal(t, 75.0, s.AttendanceRate)
	assert.Equal(t, 115.0, s.AverageDuration)
}

func TestSummarizeEventRoundsToOneDecimal(t *testing.T) {
	records := []attendance.Record{
		rec("EVT_1", "MBR_1", enums.AttendanceStatusPresent, "", "", ""),
		rec("EVT_1", "MBR_2", enums.AttendanceStatusExcused, "", "", ""),
		rec("EVT_1", "MBR_3", enums.AttendanceStatusAbsent, "", "", ""),
	}
	s := SummarizeEvent(records)
	assert.Equal(t, 33.3, s.AttendanceRate)
	assert.Equal(t, 1, s.Excused)
	assert.Zero(t, s.AverageDuration)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Zero(t, SummarizeEvent(nil).AttendanceRate)
	stats := SummarizeMember(nil)
	assert.Zero(t, stats.AttendanceRate)
	assert.Zero(t, stats.TotalHours)
}

func TestSummarizeMember(t *testing.T) {
	records := []attendance.Record{
		rec("EVT_1", "MBR_1", enums.AttendanceStatusPresent, "18:00", "20:00", ""),
		rec("EVT_2", "MBR_1", enums.AttendanceStatusLate, "18:20", "19:00", ""),
		rec("EVT_3", "MBR_1", enums.AttendanceStatusExcused, "", "", ""),
	}
	stats := SummarizeMember(records)
	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 66.7, stats.AttendanceRate)
	assert.Equal(t, 2.7, stats.TotalHours)
}

func TestComputeTrends(t *testing.T) {
	records := []attendance.Record{
		rec("EVT_2", "MBR_1", enums.AttendanceStatusPresent, "", "", "2024-03-20T18:00:00"),
		rec("EVT_1", "MBR_1", enums.AttendanceStatusPresent, "", "", "2024-03-10T18:00:00.125000"),
		rec("EVT_1", "MBR_2", enums.AttendanceStatusAbsent, "", "", "2024-03-10T18:01:00"),
		rec("EVT_2", "MBR_2", enums.AttendanceStatusLate, "", "", "2024-03-20T18:10:00"),
		rec("EVT_2", "MBR_3", enums.AttendanceStatusExcused, "", "", "2024-03-20T18:10:00"),
		rec("EVT_0", "MBR_1", enums.AttendanceStatusPresent, "", "", "2024-01-01T18:00:00"),
		rec("EVT_3", "MBR_1", enums.AttendanceStatusPresent, "", "", "not a timestamp"),
		rec("EVT_3", "MBR_2", enums.AttendanceStatusPresent, "", "", ""),
	}

	trends := ComputeTrends(records, now, 30*24*time.Hour)
	assert.Equal(t, 2, trends.EventsCount)
	assert.Equal(t, []string{"EVT_2", "EVT_1"}, trends.EventIDs)
	assert.Equal(t, []float64{66.7, 50.0}, trends.AttendanceRates)
	assert.Equal(t, []int{2, 1}, trends.TotalAttendees)
	require.Len(t, trends.Events, 2)
	assert.Equal(t, EventTrend{EventID: "EVT_1", AttendanceRate: 50.0, Attendees: 1}, trends.Events[1])
}

type stubReader struct {
	records []attendance.Record
	err     error
	calls   int
}

func (s *stubReader) List(context.Context) ([]attendance.Record, error) {
	s.calls++
	return s.records, s.err
}

func TestServiceReadsOncePerReport(t *testing.T) {
	reader := &stubReader{records: []attendance.Record{
		rec("EVT_1", "MBR_1", enums.AttendanceStatusPresent, "18:00", "19:00", "2024-03-30T18:00:00"),
		rec("EVT_1", "MBR_2", enums.AttendanceStatusAbsent, "", "", "2024-03-30T18:00:00"),
		rec("EVT_2", "MBR_1", enums.AttendanceStatusLate, "", "", "2024-03-30T18:00:00"),
	}}
	svc, err := NewService(reader, func() time.Time { return now })
	require.NoError(t, err)
	ctx := context.Background()

	summary, err := svc.EventSummary(ctx, "EVT_1")
	require.NoError(t, err)
	assert.Equal(t, "EVT_1", summary.EventID)
	assert.Equal(t, 50.0, summary.AttendanceRate)
	assert.Equal(t, 1, reader.calls)

	stats, err := svc.MemberStats(ctx, "MBR_1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, stats.AttendanceRate)
	assert.Equal(t, 1.0, stats.TotalHours)
	assert.Equal(t, 2, reader.calls)

	trends, err := svc.Trends(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, trends.EventsCount)
	assert.Equal(t, 3, reader.calls)
}

func TestServicePropagatesReadErrors(t *testing.T) {
	boom := errors.New("sheet unavailable")
	svc, err := NewService(&stubReader{err: boom}, nil)
	require.NoError(t, err)

	_, err = svc.EventSummary(context.Background(), "EVT_1")
	assert.ErrorIs(t, err, boom)

	_, err = NewService(nil, nil)
	assert.Error(t, err)
}

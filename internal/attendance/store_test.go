package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/internal/sheetstore/sheetstoretest"
	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sheetID = "roster-sheet"
	tabName = "Attendance"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Set(hour, minute int) {
	c.now = time.Date(2024, 3, 15, hour, minute, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*Store, *sheetstoretest.Values, *testClock) {
	t.Helper()
	clock := &testClock{}
	clock.Set(18, 0)
	values := sheetstoretest.New()
	values.Seed(sheetID, tabName, headers)
	store := NewStore(values, sheetID, tabName, sheetstore.WithClock(clock.Now))
	return store, values, clock
}

func TestCheckInAndOutComputesDuration(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()

	clock.Set(18, 5)
	in, err := store.CheckIn(ctx, "EVT_1", "MBR_1", "MBR_9")
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusPresent, in.Status)
	assert.Equal(t, "18:05", in.CheckInTime)
	assert.Equal(t, "ATT_EVT_1_MBR_1_20240315180500", in.ID)

	clock.Set(19, 55)
	out, err := store.CheckOut(ctx, "EVT_1", "MBR_1")
	require.NoError(t, err)
	assert.Equal(t, "19:55", out.CheckOutTime)

	got, err := store.ForPair(ctx, "EVT_1", "MBR_1")
	require.NoError(t, err)
	minutes, ok := got.DurationMinutes()
	require.True(t, ok)
	assert.Equal(t, 110, minutes)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, "2024-03-15T18:05:00", got.CreatedAt)
	assert.Equal(t, "2024-03-15T19:55:00", got.UpdatedAt)
}

func TestCheckInTwiceUpdatesSameRow(t *testing.T) {
	store, values, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.CheckIn(ctx, "EVT_1", "MBR_1", "")
	require.NoError(t, err)
	clock.Set(18, 30)
	again, err := store.CheckIn(ctx, "EVT_1", "MBR_1", "MBR_2")
	require.NoError(t, err)

	assert.Equal(t, "18:30", again.CheckInTime)
	assert.Equal(t, "MBR_2", again.RecordedBy)
	assert.Len(t, values.Rows(sheetID, tabName), 2)
}

func TestCheckOutWithoutRecord(t *testing.T) {
	store, values, _ := newTestStore(t)

	_, err := store.CheckOut(context.Background(), "EVT_1", "MBR_1")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.Zero(t, values.CountCalls(sheetstoretest.OpUpdate))
}

func TestMarkAbsent(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	excused, err := store.MarkAbsent(ctx, "EVT_1", "MBR_1", true, "MBR_9")
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusExcused, excused.Status)
	assert.Equal(t, "Marked absent (excused)", excused.Notes)

	absent, err := store.MarkAbsent(ctx, "EVT_1", "MBR_2", false, "")
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusAbsent, absent.Status)
	assert.Equal(t, "Marked absent", absent.Notes)
	assert.Equal(t, "system", absent.RecordedBy)

	_, err = store.CheckIn(ctx, "EVT_1", "MBR_3", "")
	require.NoError(t, err)
	flipped, err := store.MarkAbsent(ctx, "EVT_1", "MBR_3", false, "")
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusAbsent, flipped.Status)
	assert.Empty(t, flipped.Notes)
}

func TestRecordUpdatesExistingPair(t *testing.T) {
	store, values, clock := newTestStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, Record{EventID: "EVT_1", MemberID: "MBR_1", Status: enums.AttendanceStatusLate})
	require.NoError(t, err)

	clock.Set(19, 0)
	second, err := store.Record(ctx, Record{
		EventID:  "EVT_1",
		MemberID: "MBR_1",
		Status:   enums.AttendanceStatusPresent,
		Notes:    "arrived on time after all",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Len(t, values.Rows(sheetID, tabName), 2)

	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusPresent, got.Status)
	assert.Equal(t, "arrived on time after all", got.Notes)
}

func TestRecordRejectsInvalid(t *testing.T) {
	store, values, _ := newTestStore(t)

	_, err := store.Record(context.Background(), Record{EventID: "EVT_1", MemberID: "MBR_1", Status: "sleeping"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Zero(t, values.CountCalls(sheetstoretest.OpAppend))
}

func TestDeleteIsHard(t *testing.T) {
	store, values, _ := newTestStore(t)
	ctx := context.Background()
	a, err := store.CheckIn(ctx, "EVT_1", "MBR_1", "")
	require.NoError(t, err)
	_, err = store.CheckIn(ctx, "EVT_1", "MBR_2", "")
	require.NoError(t, err)

	before, err := store.List(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, a.ID))

	_, err = store.Get(ctx, a.ID)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))

	after, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)-1)
	assert.Len(t, values.Rows(sheetID, tabName), 3, "cleared row keeps its position")
}

func TestQueriesByEventAndMember(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()
	for _, pair := range [][2]string{{"EVT_1", "MBR_1"}, {"EVT_1", "MBR_2"}, {"EVT_2", "MBR_1"}} {
		_, err := store.CheckIn(ctx, pair[0], pair[1], "")
		require.NoError(t, err)
	}

	byEvent, err := store.ByEvent(ctx, "EVT_1")
	require.NoError(t, err)
	assert.Len(t, byEvent, 2)

	byMember, err := store.ByMember(ctx, "MBR_1")
	require.NoError(t, err)
	assert.Len(t, byMember, 2)

	_, err = store.ForPair(ctx, "EVT_2", "MBR_2")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
}

func TestBulkRecordTalliesFailures(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	res := store.BulkRecord(ctx, "EVT_1", []BulkEntry{
		{MemberID: "MBR_1"},
		{MemberID: "MBR_2", Status: enums.AttendanceStatusLate, CheckInTime: "18:20"},
		{MemberID: "MBR_3", CheckInTime: "half past six"},
		{MemberID: ""},
	})
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, 4, res.Total)
	assert.Len(t, res.Errors(), 2)

	got, err := store.ForPair(ctx, "EVT_1", "MBR_1")
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusPresent, got.Status)
	assert.Equal(t, "system", got.RecordedBy)
}

func TestInitializeSchema(t *testing.T) {
	values := sheetstoretest.New()
	store := NewStore(values, sheetID, tabName)

	wrote, err := store.InitializeSchema(context.Background())
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, Headers(), values.Rows(sheetID, tabName)[0])
}

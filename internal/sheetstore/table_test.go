package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/sheetstore/sheetstoretest"
	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

const (
	testSheet = "sheet-1"
	testTab   = "Notes"
)

type note struct {
	ID        string
	Body      string
	State     string
	UpdatedAt string
}

var noteHeaders = []string{"Note ID", "Body", "State", "Updated At"}

func noteCodec() Codec[note] {
	return Codec[note]{
		Entity:  "note",
		Headers: noteHeaders,
		ToRow: func(n note) []string {
			return []string{n.ID, n.Body, n.State, n.UpdatedAt}
		},
		FromRow: func(row []string) (note, error) {
			padded := make([]string, len(noteHeaders))
			copy(padded, row)
			if !strings.HasPrefix(padded[0], "N") {
				return note{}, fmt.Errorf("bad id %q", padded[0])
			}
			if padded[2] == "corrupt" {
				return note{}, fmt.Errorf("bad state %q", padded[2])
			}
			return note{ID: padded[0], Body: padded[1], State: padded[2], UpdatedAt: padded[3]}, nil
		},
		ID: func(n note) string { return n.ID },
		Touch: func(n note, now time.Time) note {
			n.UpdatedAt = now.Format(time.RFC3339)
			return n
		},
		MarkDeleted: func(n note) note {
			n.State = "archived"
			return n
		},
	}
}

var fixedNow = time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)

func newNoteTable(values *sheetstoretest.Values, strategy DeleteStrategy, opts ...Option) *Table[note] {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(values, testSheet, testTab, noteCodec(), strategy, opts...)
}

func seedNotes(values *sheetstoretest.Values, rows ...[]string) {
	values.Seed(testSheet, testTab, append([][]string{noteHeaders}, rows...)...)
}

func TestRanges(t *testing.T) {
	r := NewRanges("Members", 17)
	assert.Equal(t, "Members!A:Q", r.All())
	assert.Equal(t, "Members!A:A", r.IDColumn())
	assert.Equal(t, "Members!A1:Q1", r.Header())
	assert.Equal(t, "Members!A7:Q7", r.Row(7))

	assert.Equal(t, "N", ColumnLetter(14))
	assert.Equal(t, "J", ColumnLetter(10))
	assert.Equal(t, "Z", ColumnLetter(26))
	assert.Equal(t, "AA", ColumnLetter(27))
}

func TestReadAllSkipsHeaderBlankAndUnparsableRows(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values,
		[]string{"N1", "first", "open"},
		nil,
		[]string{"garbage", "row"},
		[]string{"N2", "second", "open"},
	)
	table := newNoteTable(values, SoftDelete)

	got, err := table.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "N1", got[0].ID)
	assert.Equal(t, "N2", got[1].ID)
}

func TestReadAllWithoutHeaderRow(t *testing.T) {
	values := sheetstoretest.New()
	values.Seed(testSheet, testTab, []string{"N1", "only"})
	table := newNoteTable(values, SoftDelete)

	got, err := table.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestReadAllClassifiesTransportErrors(t *testing.T) {
	values := sheetstoretest.New()
	values.FailNext(sheetstoretest.OpGet, &googleapi.Error{Code: http.StatusForbidden})
	table := newNoteTable(values, SoftDelete)

	_, err := table.ReadAll(context.Background())
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestLocateRowReadsOnlyIDColumn(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"}, []string{"N2", "b"})
	table := newNoteTable(values, SoftDelete)

	row, err := table.LocateRow(context.Background(), "N2")
	require.NoError(t, err)
	assert.Equal(t, 3, row)

	row, err = table.LocateRow(context.Background(), "N9")
	require.NoError(t, err)
	assert.Zero(t, row)

	for _, call := range values.Calls() {
		assert.Equal(t, "Notes!A:A", call.Range)
	}
}

func TestInsertAppendsAndRejectsDuplicates(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"})
	table := newNoteTable(values, SoftDelete)
	ctx := context.Background()

	_, err := table.Insert(ctx, note{ID: "N2", Body: "b"})
	require.NoError(t, err)
	assert.Len(t, values.Rows(testSheet, testTab), 3)

	_, err = table.Insert(ctx, note{ID: "N1", Body: "dup"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
	assert.Len(t, values.Rows(testSheet, testTab), 3)
}

func TestInsertRejectsIDHeldByUnparsableRow(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"}, []string{"N2", "b", "corrupt"})
	table := newNoteTable(values, SoftDelete)
	ctx := context.Background()

	all, err := table.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = table.Insert(ctx, note{ID: "N2", Body: "again"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeConflict))
	assert.Equal(t, map[string]int{"row": 3}, pkgerrors.As(err).Details())
	assert.Len(t, values.Rows(testSheet, testTab), 3)
	assert.Zero(t, values.CountCalls(sheetstoretest.OpAppend))
}

func TestInsertRunsGuards(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values)
	table := newNoteTable(values, SoftDelete)
	blocked := pkgerrors.New(pkgerrors.CodeConflict, "blocked")

	_, err := table.Insert(context.Background(), note{ID: "N1"}, func(context.Context, note) error { return blocked })
	assert.ErrorIs(t, err, blocked)
	assert.Zero(t, values.CountCalls(sheetstoretest.OpAppend))
}

func TestInsertRequiresAcknowledgement(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values)
	values.DropAck(sheetstoretest.OpAppend)
	table := newNoteTable(values, SoftDelete)

	_, err := table.Insert(context.Background(), note{ID: "N1"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
}

func TestInsertRequiresID(t *testing.T) {
	table := newNoteTable(sheetstoretest.New(), SoftDelete)
	_, err := table.Insert(context.Background(), note{})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
}

func TestUpdateRewritesRowAndStampsTimestamp(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a", "open"}, []string{"N2", "b", "open"})
	table := newNoteTable(values, SoftDelete)

	updated, err := table.Update(context.Background(), note{ID: "N2", Body: "changed", State: "open"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Format(time.RFC3339), updated.UpdatedAt)

	rows := values.Rows(testSheet, testTab)
	assert.Equal(t, []string{"N2", "changed", "open", fixedNow.Format(time.RFC3339)}, rows[2])
	assert.Equal(t, "a", rows[1][1])
}

func TestUpdateMissingRecord(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values)
	table := newNoteTable(values, SoftDelete)

	_, err := table.Update(context.Background(), note{ID: "N9"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	assert.Zero(t, values.CountCalls(sheetstoretest.OpUpdate))
}

func TestUpdateRequiresAcknowledgement(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"})
	values.DropAck(sheetstoretest.OpUpdate)
	table := newNoteTable(values, SoftDelete)

	_, err := table.Update(context.Background(), note{ID: "N1"})
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
}

func TestSoftDeleteKeepsRow(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a", "open"})
	table := newNoteTable(values, SoftDelete)

	require.NoError(t, table.Delete(context.Background(), "N1"))

	got, err := table.FindByID(context.Background(), "N1")
	require.NoError(t, err)
	assert.Equal(t, "archived", got.State)
	assert.Zero(t, values.CountCalls(sheetstoretest.OpClear))
}

func TestHardDeleteClearsRow(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"}, []string{"N2", "b"})
	table := newNoteTable(values, HardDelete)
	ctx := context.Background()

	require.NoError(t, table.Delete(ctx, "N1"))

	_, err := table.FindByID(ctx, "N1")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound))
	all, err := table.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.True(t, pkgerrors.Is(table.Delete(ctx, "N1"), pkgerrors.CodeNotFound))
}

func TestHardDeleteRequiresClearedRange(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"})
	values.DropAck(sheetstoretest.OpClear)
	table := newNoteTable(values, HardDelete)

	err := table.Delete(context.Background(), "N1")
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
}

func TestEnsureHeaders(t *testing.T) {
	values := sheetstoretest.New()
	table := newNoteTable(values, SoftDelete)
	ctx := context.Background()

	wrote, err := table.EnsureHeaders(ctx)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, noteHeaders, values.Rows(testSheet, testTab)[0])

	wrote, err = table.EnsureHeaders(ctx)
	require.NoError(t, err)
	assert.False(t, wrote)

	values.Seed(testSheet, testTab, []string{"Note ID", "Wrong"})
	wrote, err = table.EnsureHeaders(ctx)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, noteHeaders, values.Rows(testSheet, testTab)[0])
}

type memoryCache struct {
	entries     map[string][][]string
	invalidated []string
	getErr      error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][][]string{}}
}

func (c *memoryCache) RangeKey(spreadsheetID, rng string) string {
	return spreadsheetID + "|" + rng
}

func (c *memoryCache) GetRows(_ context.Context, key string) ([][]string, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	rows, ok := c.entries[key]
	return rows, ok, nil
}

func (c *memoryCache) SetRows(_ context.Context, key string, rows [][]string) error {
	c.entries[key] = rows
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
		c.invalidated = append(c.invalidated, key)
	}
	return nil
}

func TestCacheServesReadsUntilWrite(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"})
	cache := newMemoryCache()
	table := newNoteTable(values, SoftDelete, WithCache(cache))
	ctx := context.Background()

	_, err := table.ReadAll(ctx)
	require.NoError(t, err)
	_, err = table.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, values.CountCalls(sheetstoretest.OpGet))

	_, err = table.Insert(ctx, note{ID: "N2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sheet-1|Notes!A:D"}, cache.invalidated)

	got, err := table.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCacheErrorsFallBackToSheet(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"})
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	table := newNoteTable(values, SoftDelete, WithCache(cache))

	got, err := table.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

type stubLocator struct{ row int }

func (s stubLocator) LocateRow(context.Context, string) (int, error) { return s.row, nil }

func TestCustomRowLocator(t *testing.T) {
	values := sheetstoretest.New()
	seedNotes(values, []string{"N1", "a"})
	table := newNoteTable(values, SoftDelete, WithRowLocator(stubLocator{row: 2}))

	_, err := table.Update(context.Background(), note{ID: "N1", Body: "via index"})
	require.NoError(t, err)
	assert.Equal(t, "via index", values.Rows(testSheet, testTab)[1][1])
	for _, call := range values.Calls() {
		assert.NotEqual(t, "Notes!A:A", call.Range)
	}
}

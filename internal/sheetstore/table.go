// Package sheetstore maps typed records onto the rows of one spreadsheet tab.
package sheetstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/angelmondragon/roster-sheets/pkg/logger"
	"github.com/angelmondragon/roster-sheets/pkg/sheets"
)

// DeleteStrategy selects what Delete does to a row.
type DeleteStrategy int

const (
	// SoftDelete rewrites the row with the codec's deleted state.
	SoftDelete DeleteStrategy = iota
	// HardDelete clears every cell of the row, leaving a blank row behind.
	HardDelete
)

// Codec describes how one record type is laid out in a tab.
type Codec[T any] struct {
	// Entity names the record in errors and logs, e.g. "member".
	Entity  string
	Headers []string
	ToRow   func(T) []string
	FromRow func([]string) (T, error)
	ID      func(T) string
	// Touch stamps the last-modified timestamp.
	Touch func(T, time.Time) T
	// MarkDeleted is required for SoftDelete tables.
	MarkDeleted func(T) T
}

// Guard runs before an insert is appended. A non-nil error aborts the insert.
type Guard[T any] func(ctx context.Context, candidate T) error

// RangeCache stores the rows of a full-range read.
type RangeCache interface {
	RangeKey(spreadsheetID, rng string) string
	GetRows(ctx context.Context, key string) ([][]string, bool, error)
	SetRows(ctx context.Context, key string, rows [][]string) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Option customizes a Table.
type Option func(*settings)

type settings struct {
	logg    *logger.Logger
	cache   RangeCache
	locator RowLocator
	now     func() time.Time
}

func WithLogger(logg *logger.Logger) Option {
	return func(s *settings) { s.logg = logg }
}

// WithCache serves full-range reads from cache until the next write.
func WithCache(cache RangeCache) Option {
	return func(s *settings) { s.cache = cache }
}

func WithRowLocator(locator RowLocator) Option {
	return func(s *settings) { s.locator = locator }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// Table is a record store over one tab.
//
// Consistency is weak: nothing isolates the row lookup from the write that
// follows it, so concurrent writers to the same tab can overwrite each other
// or target a row that has moved. Duplicate checks are equally racy.
type Table[T any] struct {
	values        sheets.Values
	spreadsheetID string
	tab           string
	codec         Codec[T]
	strategy      DeleteStrategy
	locator       RowLocator
	cache         RangeCache
	logg          *logger.Logger
	now           func() time.Time
}

// New binds a table to spreadsheetID/tab.
func New[T any](values sheets.Values, spreadsheetID, tab string, codec Codec[T], strategy DeleteStrategy, opts ...Option) *Table[T] {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.locator == nil {
		s.locator = &ColumnLocator{Values: values, SpreadsheetID: spreadsheetID, Tab: tab}
	}
	return &Table[T]{
		values:        values,
		spreadsheetID: spreadsheetID,
		tab:           tab,
		codec:         codec,
		strategy:      strategy,
		locator:       s.locator,
		cache:         s.cache,
		logg:          s.logg,
		now:           s.now,
	}
}

// Now returns the table's clock reading.
func (t *Table[T]) Now() time.Time {
	return t.now()
}

func (t *Table[T]) Entity() string {
	return t.codec.Entity
}

func (t *Table[T]) Logger() *logger.Logger {
	return t.logg
}

func (t *Table[T]) ranges() Ranges {
	return NewRanges(t.tab, len(t.codec.Headers))
}

func (t *Table[T]) logCtx(ctx context.Context) context.Context {
	return t.logg.WithSheet(ctx, t.tab)
}

// ReadAll returns every parsable record in sheet order. The header row, blank
// rows and rows that fail to parse are skipped.
func (t *Table[T]) ReadAll(ctx context.Context) ([]T, error) {
	rows, err := t.readRows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		if i == 0 && t.isHeader(row) {
			continue
		}
		if isBlank(row) {
			continue
		}
		rec, err := t.codec.FromRow(row)
		if err != nil {
			t.logg.WarnErr(t.logg.WithField(t.logCtx(ctx), "row", i+1), "skipping unparsable row", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (t *Table[T]) readRows(ctx context.Context) ([][]string, error) {
	rng := t.ranges().All()
	var key string
	if t.cache != nil {
		key = t.cache.RangeKey(t.spreadsheetID, rng)
		rows, ok, err := t.cache.GetRows(ctx, key)
		switch {
		case err != nil:
			t.logg.WarnErr(t.logCtx(ctx), "range cache read failed", err)
		case ok:
			return rows, nil
		}
	}

	vr, err := t.values.Get(ctx, t.spreadsheetID, rng)
	if err != nil {
		return nil, sheets.Classify(err, fmt.Sprintf("reading %s rows", t.codec.Entity))
	}
	rows := sheets.StringRows(vr)

	if t.cache != nil {
		if err := t.cache.SetRows(ctx, key, rows); err != nil {
			t.logg.WarnErr(t.logCtx(ctx), "range cache write failed", err)
		}
	}
	return rows, nil
}

func (t *Table[T]) invalidate(ctx context.Context) {
	if t.cache == nil {
		return
	}
	key := t.cache.RangeKey(t.spreadsheetID, t.ranges().All())
	if err := t.cache.Invalidate(ctx, key); err != nil {
		t.logg.WarnErr(t.logCtx(ctx), "range cache invalidation failed", err)
	}
}

func (t *Table[T]) isHeader(row []string) bool {
	return len(row) > 0 && len(t.codec.Headers) > 0 && row[0] == t.codec.Headers[0]
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Find returns the records matching pred.
func (t *Table[T]) Find(ctx context.Context, pred func(T) bool) ([]T, error) {
	all, err := t.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, rec := range all {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindByID returns the first record with id, or NOT_FOUND.
func (t *Table[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	all, err := t.ReadAll(ctx)
	if err != nil {
		return zero, err
	}
	for _, rec := range all {
		if t.codec.ID(rec) == id {
			return rec, nil
		}
	}
	return zero, t.notFound(id)
}

// LocateRow returns the 1-indexed row holding id, or 0 when absent.
func (t *Table[T]) LocateRow(ctx context.Context, id string) (int, error) {
	row, err := t.locator.LocateRow(ctx, id)
	if err != nil {
		return 0, sheets.Classify(err, fmt.Sprintf("locating %s %s", t.codec.Entity, id))
	}
	return row, nil
}

// Insert appends rec after checking that its id is unused and every guard
// passes.
func (t *Table[T]) Insert(ctx context.Context, rec T, guards ...Guard[T]) (T, error) {
	id := t.codec.ID(rec)
	ctx = t.logg.WithRecordID(t.logCtx(ctx), id)
	if strings.TrimSpace(id) == "" {
		return rec, pkgerrors.New(pkgerrors.CodeValidation, t.codec.Entity+" id is required")
	}

	// Rows that fail to parse still own their id.
	row, err := t.LocateRow(ctx, id)
	if err != nil {
		return rec, err
	}
	if row > 0 {
		return rec, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s %s already exists", t.codec.Entity, id)).
			WithDetails(map[string]int{"row": row})
	}

	for _, guard := range guards {
		if err := guard(ctx, rec); err != nil {
			return rec, err
		}
	}

	resp, err := t.values.Append(ctx, t.spreadsheetID, t.ranges().All(), [][]string{t.codec.ToRow(rec)})
	if err != nil {
		return rec, sheets.Classify(err, fmt.Sprintf("appending %s %s", t.codec.Entity, id))
	}
	t.invalidate(ctx)
	if sheets.UpdatedRows(resp) <= 0 {
		return rec, t.notAcknowledged("append", id)
	}
	t.logg.Info(ctx, t.codec.Entity+" created")
	return rec, nil
}

// Update stamps rec and rewrites the row holding its id.
func (t *Table[T]) Update(ctx context.Context, rec T) (T, error) {
	id := t.codec.ID(rec)
	ctx = t.logg.WithRecordID(t.logCtx(ctx), id)

	row, err := t.LocateRow(ctx, id)
	if err != nil {
		return rec, err
	}
	if row == 0 {
		return rec, t.notFound(id)
	}

	if t.codec.Touch != nil {
		rec = t.codec.Touch(rec, t.now())
	}
	resp, err := t.values.Update(ctx, t.spreadsheetID, t.ranges().Row(row), [][]string{t.codec.ToRow(rec)})
	if err != nil {
		return rec, sheets.Classify(err, fmt.Sprintf("updating %s %s", t.codec.Entity, id))
	}
	t.invalidate(ctx)
	if resp == nil || resp.UpdatedRows <= 0 {
		return rec, t.notAcknowledged("update", id)
	}
	t.logg.Info(ctx, t.codec.Entity+" updated")
	return rec, nil
}

// Delete removes id according to the table's strategy.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	if t.strategy == SoftDelete {
		rec, err := t.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if t.codec.MarkDeleted == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, t.codec.Entity+" codec cannot soft delete")
		}
		_, err = t.Update(ctx, t.codec.MarkDeleted(rec))
		return err
	}

	ctx = t.logg.WithRecordID(t.logCtx(ctx), id)
	row, err := t.LocateRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return t.notFound(id)
	}
	resp, err := t.values.Clear(ctx, t.spreadsheetID, t.ranges().Row(row))
	if err != nil {
		return sheets.Classify(err, fmt.Sprintf("clearing %s %s", t.codec.Entity, id))
	}
	t.invalidate(ctx)
	if resp == nil || resp.ClearedRange == "" {
		return t.notAcknowledged("clear", id)
	}
	t.logg.Info(ctx, t.codec.Entity+" deleted")
	return nil
}

// EnsureHeaders writes the canonical header row when the first row is empty
// or differs. It reports whether a write happened.
func (t *Table[T]) EnsureHeaders(ctx context.Context) (bool, error) {
	ctx = t.logCtx(ctx)
	vr, err := t.values.Get(ctx, t.spreadsheetID, t.ranges().Header())
	if err != nil {
		return false, sheets.Classify(err, fmt.Sprintf("reading %s headers", t.codec.Entity))
	}
	rows := sheets.StringRows(vr)
	if len(rows) > 0 && sameCells(rows[0], t.codec.Headers) {
		return false, nil
	}

	resp, err := t.values.Update(ctx, t.spreadsheetID, t.ranges().Header(), [][]string{t.codec.Headers})
	if err != nil {
		return false, sheets.Classify(err, fmt.Sprintf("writing %s headers", t.codec.Entity))
	}
	t.invalidate(ctx)
	if resp == nil || resp.UpdatedRows <= 0 {
		return false, t.notAcknowledged("header write", t.tab)
	}
	t.logg.Info(ctx, "headers initialized")
	return true, nil
}

func sameCells(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t *Table[T]) notFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s not found", t.codec.Entity, id))
}

func (t *Table[T]) notAcknowledged(action, id string) error {
	return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s of %s %s was not acknowledged", action, t.codec.Entity, id))
}

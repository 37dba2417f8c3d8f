// Package sheetstoretest provides an in-memory sheets.Values for store tests.
package sheetstoretest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gsheets "google.golang.org/api/sheets/v4"
)

const (
	OpGet    = "get"
	OpAppend = "append"
	OpUpdate = "update"
	OpClear  = "clear"
)

// Call records one request made against the fake.
type Call struct {
	Op    string
	Range string
}

// Values keeps every tab as a slice of rows. Cleared rows stay in place as
// empty rows, the way the real API leaves them.
type Values struct {
	mu    sync.Mutex
	tabs  map[string][][]string
	errs  map[string][]error
	noAck map[string]bool
	calls []Call
}

func New() *Values {
	return &Values{
		tabs:  map[string][][]string{},
		errs:  map[string][]error{},
		noAck: map[string]bool{},
	}
}

func tabKey(spreadsheetID, tab string) string {
	return spreadsheetID + "/" + tab
}

// Seed replaces the content of a tab.
func (v *Values) Seed(spreadsheetID, tab string, rows ...[]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	v.tabs[tabKey(spreadsheetID, tab)] = copied
}

// Rows returns a copy of the tab's rows.
func (v *Values) Rows(spreadsheetID, tab string) [][]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	src := v.tabs[tabKey(spreadsheetID, tab)]
	out := make([][]string, len(src))
	for i, row := range src {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// FailNext queues errors returned by the next calls of op.
func (v *Values) FailNext(op string, errs ...error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errs[op] = append(v.errs[op], errs...)
}

// DropAck makes op succeed without acknowledging any change.
func (v *Values) DropAck(op string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.noAck[op] = true
}

func (v *Values) Calls() []Call {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Call(nil), v.calls...)
}

// CountCalls returns how many calls of op were made.
func (v *Values) CountCalls(op string) int {
	n := 0
	for _, c := range v.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (v *Values) begin(op, rng string) error {
	v.calls = append(v.calls, Call{Op: op, Range: rng})
	if queue := v.errs[op]; len(queue) > 0 {
		v.errs[op] = queue[1:]
		return queue[0]
	}
	return nil
}

func (v *Values) Get(_ context.Context, spreadsheetID, rng string) (*gsheets.ValueRange, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.begin(OpGet, rng); err != nil {
		return nil, err
	}
	ref, err := parseRange(rng)
	if err != nil {
		return nil, err
	}
	rows := v.tabs[tabKey(spreadsheetID, ref.tab)]

	var selected [][]string
	if ref.row > 0 {
		if ref.row <= len(rows) {
			selected = [][]string{rows[ref.row-1]}
		}
	} else {
		selected = rows
	}

	out := make([][]interface{}, 0, len(selected))
	for _, row := range selected {
		cells := trimTrailing(row)
		if len(cells) > ref.columns {
			cells = cells[:ref.columns]
		}
		values := make([]interface{}, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		out = append(out, values)
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return &gsheets.ValueRange{Range: rng, MajorDimension: "ROWS", Values: out}, nil
}

func (v *Values) Append(_ context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.AppendValuesResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.begin(OpAppend, rng); err != nil {
		return nil, err
	}
	ref, err := parseRange(rng)
	if err != nil {
		return nil, err
	}
	if v.noAck[OpAppend] {
		return &gsheets.AppendValuesResponse{}, nil
	}
	key := tabKey(spreadsheetID, ref.tab)
	for _, row := range rows {
		v.tabs[key] = append(v.tabs[key], append([]string(nil), row...))
	}
	return &gsheets.AppendValuesResponse{
		Updates: &gsheets.UpdateValuesResponse{UpdatedRows: int64(len(rows))},
	}, nil
}

func (v *Values) Update(_ context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.UpdateValuesResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.begin(OpUpdate, rng); err != nil {
		return nil, err
	}
	ref, err := parseRange(rng)
	if err != nil {
		return nil, err
	}
	if ref.row == 0 {
		return nil, fmt.Errorf("update needs a bounded row range, got %q", rng)
	}
	if v.noAck[OpUpdate] {
		return &gsheets.UpdateValuesResponse{}, nil
	}
	key := tabKey(spreadsheetID, ref.tab)
	for i, row := range rows {
		idx := ref.row - 1 + i
		for len(v.tabs[key]) <= idx {
			v.tabs[key] = append(v.tabs[key], nil)
		}
		v.tabs[key][idx] = append([]string(nil), row...)
	}
	return &gsheets.UpdateValuesResponse{UpdatedRange: rng, UpdatedRows: int64(len(rows))}, nil
}

func (v *Values) Clear(_ context.Context, spreadsheetID, rng string) (*gsheets.ClearValuesResponse, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.begin(OpClear, rng); err != nil {
		return nil, err
	}
	ref, err := parseRange(rng)
	if err != nil {
		return nil, err
	}
	if v.noAck[OpClear] {
		return &gsheets.ClearValuesResponse{}, nil
	}
	key := tabKey(spreadsheetID, ref.tab)
	if ref.row > 0 && ref.row <= len(v.tabs[key]) {
		v.tabs[key][ref.row-1] = nil
	}
	return &gsheets.ClearValuesResponse{ClearedRange: rng}, nil
}

type rangeRef struct {
	tab     string
	row     int
	columns int
}

// parseRange understands Tab!A:Q, Tab!A:A and Tab!A5:Q5.
func parseRange(rng string) (rangeRef, error) {
	tab, cells, ok := strings.Cut(rng, "!")
	if !ok {
		return rangeRef{}, fmt.Errorf("range %q has no tab", rng)
	}
	start, end, ok := strings.Cut(cells, ":")
	if !ok {
		return rangeRef{}, fmt.Errorf("range %q has no end", rng)
	}
	_, startRow := splitCell(start)
	endCol, _ := splitCell(end)
	return rangeRef{tab: tab, row: startRow, columns: columnNumber(endCol)}, nil
}

func splitCell(cell string) (string, int) {
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		i++
	}
	row, _ := strconv.Atoi(cell[i:])
	return cell[:i], row
}

func columnNumber(letters string) int {
	n := 0
	for _, r := range letters {
		n = n*26 + int(r-'A'+1)
	}
	return n
}

func trimTrailing(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}

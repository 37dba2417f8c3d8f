package sheetstore

import (
	"context"
	"fmt"

	"github.com/angelmondragon/roster-sheets/pkg/sheets"
)

// Ranges builds A1 notation for a tab whose records span a fixed number of
// columns starting at A.
type Ranges struct {
	tab  string
	last string
}

func NewRanges(tab string, columns int) Ranges {
	if columns < 1 {
		columns = 1
	}
	return Ranges{tab: tab, last: ColumnLetter(columns)}
}

// All is the full record range, e.g. Members!A:Q.
func (r Ranges) All() string {
	return fmt.Sprintf("%s!A:%s", r.tab, r.last)
}

// IDColumn is column A alone.
func (r Ranges) IDColumn() string {
	return fmt.Sprintf("%s!A:A", r.tab)
}

func (r Ranges) Header() string {
	return r.Row(1)
}

// Row addresses one 1-indexed row, e.g. Members!A5:Q5.
func (r Ranges) Row(n int) string {
	return fmt.Sprintf("%s!A%d:%s%d", r.tab, n, r.last, n)
}

// ColumnLetter converts a 1-based column number to its letter name.
func ColumnLetter(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// RowLocator finds the sheet row that holds a record id.
type RowLocator interface {
	// LocateRow returns the 1-indexed row, or 0 when id is absent.
	LocateRow(ctx context.Context, id string) (int, error)
}

// ColumnLocator scans column A on every call.
type ColumnLocator struct {
	Values        sheets.Values
	SpreadsheetID string
	Tab           string
}

func (l *ColumnLocator) LocateRow(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, nil
	}
	vr, err := l.Values.Get(ctx, l.SpreadsheetID, NewRanges(l.Tab, 1).IDColumn())
	if err != nil {
		return 0, err
	}
	for i, row := range sheets.StringRows(vr) {
		if len(row) > 0 && row[0] == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

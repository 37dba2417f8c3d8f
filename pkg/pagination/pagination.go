package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/roster-sheets/pkg/validate"
)

const (
	// MaxLimit caps how many rows one page can hold.
	MaxLimit = 500
)

// Params holds page inputs from the command line. A zero Limit returns
// everything after the cursor.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points just past the last row of the previous page. ID is the id of
// that row, so a sheet that shifted between pages is detected.
type Cursor struct {
	Offset int
	ID     string
}

// Page is one slice of a listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// NormalizeLimit clamps limit to [0, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%d|%s", cursor.Offset, cursor.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components. An empty
// value yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(parts[0])
	if err != nil || offset <= 0 {
		return nil, fmt.Errorf("invalid cursor offset %q", parts[0])
	}
	return &Cursor{Offset: offset, ID: parts[1]}, nil
}

// Paginate cuts items into the page params asks for. idOf names each item
// for the cursor. A cursor whose row no longer carries the same id is a
// validation error: the listing changed and the caller should start over.
func Paginate[T any](items []T, params Params, idOf func(T) string) (Page[T], error) {
	start := 0
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, validate.Field("page", "cursor", err.Error())
	}
	if cursor != nil {
		if cursor.Offset > len(items) || idOf(items[cursor.Offset-1]) != cursor.ID {
			return Page[T]{}, validate.Field("page", "cursor", "is stale, the listing changed")
		}
		start = cursor.Offset
	}

	rest := items[start:]
	limit := NormalizeLimit(params.Limit)
	if limit == 0 || len(rest) <= limit {
		return Page[T]{Items: rest}, nil
	}

	end := start + limit
	return Page[T]{
		Items:      items[start:end],
		NextCursor: EncodeCursor(Cursor{Offset: end, ID: idOf(items[end-1])}),
	}, nil
}

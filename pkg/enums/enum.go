// Package enums holds the closed value sets stored in roster cells.
package enums

import (
	"fmt"
	"slices"
)

func isKnown[T ~string](v T, known []T) bool {
	return slices.Contains(known, v)
}

// parse matches value exactly; sheet cells are written lowercase.
func parse[T ~string](value, kind string, known []T) (T, error) {
	if v := T(value); isKnown(v, known) {
		return v, nil
	}
	return "", fmt.Errorf("invalid %s %q, expected one of %v", kind, value, known)
}

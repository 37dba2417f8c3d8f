package cli

import (
	"github.com/angelmondragon/roster-sheets/pkg/pagination"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
	"github.com/spf13/cobra"
)

// parseFlag turns a raw enum flag into its typed value or a validation error
// naming the flag.
func parseFlag[T any](flag, raw string, parse func(string) (T, error)) (T, error) {
	v, err := parse(raw)
	if err != nil {
		var zero T
		return zero, validate.Field("flag", flag, err.Error())
	}
	return v, nil
}

// requireDate rejects values that are not YYYY-MM-DD.
func requireDate(flag, raw string) error {
	if !validate.IsDate(raw) {
		return validate.Field("flag", flag, "must be a YYYY-MM-DD date")
	}
	return nil
}

// pageFlags are the --limit and --cursor flags of list commands.
type pageFlags struct {
	limit  int
	cursor string
}

func (p *pageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.limit, "limit", 0, "Page size, 0 for everything")
	cmd.Flags().StringVar(&p.cursor, "cursor", "", "next_cursor from the previous page")
}

// paginate pages a listing result, passing a listing error through.
func paginate[T any](items []T, err error, p pageFlags, idOf func(T) string) (pagination.Page[T], error) {
	if err != nil {
		return pagination.Page[T]{}, err
	}
	return pagination.Paginate(items, pagination.Params{Limit: p.limit, Cursor: p.cursor}, idOf)
}

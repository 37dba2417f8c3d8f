package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/roster-sheets/pkg/config"
	"github.com/angelmondragon/roster-sheets/pkg/logger"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw     = "RAW"
	insertRows        = "INSERT_ROWS"
	majorDimensionRow = "ROWS"
)

var (
	errCredentialsRequired  = errors.New("google credentials json or file is required")
	errClientNotInitialized = errors.New("sheets client not initialized")
)

// Values is the authenticated surface the record stores need: read, append,
// rewrite and clear a named A1 range of one spreadsheet.
type Values interface {
	Get(ctx context.Context, spreadsheetID, rng string) (*gsheets.ValueRange, error)
	Append(ctx context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.AppendValuesResponse, error)
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.UpdateValuesResponse, error)
	Clear(ctx context.Context, spreadsheetID, rng string) (*gsheets.ClearValuesResponse, error)
}

// Client adapts the Sheets v4 values API to Values.
type Client struct {
	svc *gsheets.Service
}

// NewClient creates a Sheets client authenticated with the configured service account.
func NewClient(ctx context.Context, cfg config.GoogleConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	opts := clientOptions(cfg)
	if len(opts) == 0 && len(extra) == 0 {
		return nil, errCredentialsRequired
	}
	opts = append(opts, option.WithScopes(gsheets.SpreadsheetsScope))
	opts = append(opts, extra...)

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "sheets client initialized")
	}
	return &Client{svc: svc}, nil
}

// NewClientFromService wraps an already-authenticated service.
func NewClientFromService(svc *gsheets.Service) *Client {
	return &Client{svc: svc}
}

func clientOptions(cfg config.GoogleConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ApplicationCredentials))
	}
	return opts
}

func (c *Client) Get(ctx context.Context, spreadsheetID, rng string) (*gsheets.ValueRange, error) {
	if c == nil || c.svc == nil {
		return nil, errClientNotInitialized
	}
	return c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
}

func (c *Client) Append(ctx context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.AppendValuesResponse, error) {
	if c == nil || c.svc == nil {
		return nil, errClientNotInitialized
	}
	return c.svc.Spreadsheets.Values.Append(spreadsheetID, rng, toValueRange(rows)).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
}

func (c *Client) Update(ctx context.Context, spreadsheetID, rng string, rows [][]string) (*gsheets.UpdateValuesResponse, error) {
	if c == nil || c.svc == nil {
		return nil, errClientNotInitialized
	}
	return c.svc.Spreadsheets.Values.Update(spreadsheetID, rng, toValueRange(rows)).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
}

func (c *Client) Clear(ctx context.Context, spreadsheetID, rng string) (*gsheets.ClearValuesResponse, error) {
	if c == nil || c.svc == nil {
		return nil, errClientNotInitialized
	}
	return c.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheets.ClearValuesRequest{}).Context(ctx).Do()
}

func toValueRange(rows [][]string) *gsheets.ValueRange {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}
	return &gsheets.ValueRange{MajorDimension: majorDimensionRow, Values: values}
}

// StringRows flattens a value range into rows of strings. Rows keep the
// length the API returned; trailing empty cells are not padded.
func StringRows(vr *gsheets.ValueRange) [][]string {
	if vr == nil {
		return nil
	}
	rows := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			if s, ok := cell.(string); ok {
				cells[j] = s
				continue
			}
			cells[j] = fmt.Sprint(cell)
		}
		rows[i] = cells
	}
	return rows
}

// UpdatedRows reads the row count an append acknowledged, zero when absent.
func UpdatedRows(resp *gsheets.AppendValuesResponse) int64 {
	if resp == nil || resp.Updates == nil {
		return 0
	}
	return resp.Updates.UpdatedRows
}

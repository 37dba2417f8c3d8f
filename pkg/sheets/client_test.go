package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/roster-sheets/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		seen = append(seen, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewClientFromService(svc), &seen
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func TestClientGetReturnsRows(t *testing.T) {
	client, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"range":          "Members!A1:Q2",
			"majorDimension": "ROWS",
			"values":         [][]string{{"Member ID", "First Name"}, {"MBR_1", "Ana"}},
		})
	})

	vr, err := client.Get(context.Background(), "sheet-1", "Members!A:Q")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Member ID", "First Name"}, {"MBR_1", "Ana"}}, StringRows(vr))

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Contains(t, req.path, "/v4/spreadsheets/sheet-1/values/")
}

func TestClientAppendUsesRawInsertRows(t *testing.T) {
	client, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"spreadsheetId": "sheet-1",
			"updates":       map[string]any{"updatedRows": 1, "updatedRange": "Members!A5:Q5"},
		})
	})

	resp, err := client.Append(context.Background(), "sheet-1", "Members!A:Q", [][]string{{"MBR_1", "Ana"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), UpdatedRows(resp))

	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.True(t, strings.HasSuffix(req.path, ":append"))
	assert.Contains(t, req.query, "valueInputOption=RAW")
	assert.Contains(t, req.query, "insertDataOption=INSERT_ROWS")
	assert.Equal(t, []any{[]any{"MBR_1", "Ana"}}, req.body["values"])
}

func TestClientUpdateAndClear(t *testing.T) {
	client, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ":clear") {
			writeJSON(w, http.StatusOK, map[string]any{"clearedRange": "Attendance!A3:J3"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"updatedRows": 1})
	})

	upd, err := client.Update(context.Background(), "sheet-1", "Members!A3:Q3", [][]string{{"MBR_1"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upd.UpdatedRows)

	clr, err := client.Clear(context.Background(), "sheet-1", "Attendance!A3:J3")
	require.NoError(t, err)
	assert.Equal(t, "Attendance!A3:J3", clr.ClearedRange)

	require.Len(t, *seen, 2)
	assert.Equal(t, http.MethodPut, (*seen)[0].method)
	assert.Contains(t, (*seen)[0].query, "valueInputOption=RAW")
	assert.Equal(t, http.MethodPost, (*seen)[1].method)
}

func TestClientSurfacesGoogleAPIErrors(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"code": 429, "message": "Quota exceeded"},
		})
	})

	_, err := client.Get(context.Background(), "sheet-1", "Members!A:Q")
	require.Error(t, err)
	var apiErr *googleapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Code)
	assert.True(t, IsTransient(err))
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), config.GoogleConfig{}, nil)
	assert.ErrorIs(t, err, errCredentialsRequired)
}

func TestNilClientReturnsError(t *testing.T) {
	var c *Client
	_, err := c.Get(context.Background(), "sheet", "A:A")
	assert.ErrorIs(t, err, errClientNotInitialized)
}

func TestStringRowsHandlesNonStringCells(t *testing.T) {
	rows := StringRows(&gsheets.ValueRange{Values: [][]interface{}{{"a", float64(3), nil, true}}})
	assert.Equal(t, [][]string{{"a", "3", "", "true"}}, rows)
	assert.Nil(t, StringRows(nil))
	assert.Equal(t, int64(0), UpdatedRows(&gsheets.AppendValuesResponse{}))
}

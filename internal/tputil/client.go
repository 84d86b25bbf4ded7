package tputil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/gojek/heimdall/v7/httpclient"

	"github.com/tracetriage/tracetriage/internal/errorutil"
)

type (
	// Client queries a trace processor instance over its HTTP interface.
	// The instance owns the loaded trace; the client only issues read-only
	// statements against it.
	Client struct {
		http *httpclient.Client
		url  string
	}

	queryBody struct {
		Query string `json:"query"`
	}

	queryResponse struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
		Error   *Error          `json:"error"`
	}

	ErrorResponse struct {
		Error Error `json:"error"`
	}

	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
)

func NewClient(host string) (*Client, error) {
	if host == "" {
		return nil, errors.New("host must be set")
	}
	return &Client{
		url:  fmt.Sprintf("%s/query", host),
		http: httpclient.NewClient(httpclient.WithHTTPTimeout(30 * time.Second)),
	}, nil
}

func (c *Client) URL() string {
	return c.url
}

// Ping checks that the engine answers at all. A failure here is the fatal
// trace-open error class.
func (c *Client) Ping(ctx context.Context) error {
	rows, err := c.RunQuery(ctx, "SELECT 1 AS one")
	if err != nil {
		return fmt.Errorf("%w: %v", errorutil.ErrTraceOpen, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %v", errorutil.ErrTraceOpen, errorutil.ErrNoResults)
	}
	return nil
}

func (c *Client) RunQuery(_ context.Context, statement string) ([]Row, error) {
	body, err := gojson.Marshal(queryBody{Query: statement})
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	headers.Set("content-type", "application/json")
	resp, err := c.http.Post(c.url, bytes.NewBuffer(body), headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode <= 599 {
		var errResponse ErrorResponse
		_ = gojson.NewDecoder(resp.Body).Decode(&errResponse)
		return nil, fmt.Errorf(
			"error while trying to query the trace processor. http status: %d, type: %s, message: %s",
			resp.StatusCode,
			errResponse.Error.Type,
			errResponse.Error.Message,
		)
	}

	var qr queryResponse
	if err := gojson.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, err
	}
	if qr.Error != nil {
		return nil, fmt.Errorf("query failed: %s: %s", qr.Error.Type, qr.Error.Message)
	}

	rows := make([]Row, 0, len(qr.Rows))
	for _, values := range qr.Rows {
		if len(values) != len(qr.Columns) {
			return nil, fmt.Errorf("row has %d values for %d columns", len(values), len(qr.Columns))
		}
		row := make(Row, len(qr.Columns))
		for i, col := range qr.Columns {
			row[col] = values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

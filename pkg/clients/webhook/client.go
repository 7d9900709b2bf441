// Package webhook posts export rows to a spreadsheet web app endpoint.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"github.com/quociou/pibao/internal/config"
)

// Client pushes a batch of rows keyed by the first column (the date).
type Client interface {
	PushRows(ctx context.Context, req PushRowsRequest) (*PushRowsResponse, error)
}

// PushRowsRequest is the JSON body understood by the receiving script.
type PushRowsRequest struct {
	Header []string        `json:"header"`
	Rows   [][]interface{} `json:"rows"`
}

// PushRowsResponse reports how many rows the receiver inserted or updated.
type PushRowsResponse struct {
	OK       bool   `json:"ok"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Message  string `json:"message,omitempty"`
}

// APIClient is the resty implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient returns a client posting to cfg.WebhookURL.
func NewClient(cfg config.ExportConfig) *APIClient {
	rc := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.WebhookToken != "" {
		rc.SetAuthToken(cfg.WebhookToken)
	}
	return &APIClient{httpClient: rc, url: cfg.WebhookURL}
}

func (c *APIClient) PushRows(ctx context.Context, req PushRowsRequest) (*PushRowsResponse, error) {
	if c.url == "" {
		return nil, errors.New("export webhook url is not configured")
	}

	result := new(PushRowsResponse)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("post export rows: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("export webhook error: status=%d body=%s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	// Apps Script endpoints answer 200 with ok=false on failure.
	if !result.OK {
		msg := result.Message
		if msg == "" {
			msg = "ok=false without message"
		}
		return nil, fmt.Errorf("export webhook rejected rows: %s", msg)
	}
	return result, nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediacal/internal/model"
)

// HTTP fetches events from a campaign backend:
//
//	GET {BaseURL}/events?year=2025&month=6
//
// The response body is a JSON array of raw events.
type HTTP struct {
	BaseURL string
	Token   string
	client  *http.Client
}

// NewHTTP returns an HTTP source. A nil client gets the given timeout
// (15 seconds when zero).
func NewHTTP(baseURL, token string, timeout time.Duration, client *http.Client) *HTTP {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  client,
	}
}

func (h *HTTP) EventsForMonth(ctx context.Context, year int, month time.Month) ([]model.RawEvent, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(int(month)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/events?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("source: backend returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var events []model.RawEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("source: decode backend response: %w", err)
	}
	if events == nil {
		events = []model.RawEvent{}
	}
	return events, nil
}

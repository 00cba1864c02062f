package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client fetches day schedules from the public API for embedding hosts.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

func (c *Client) DaySchedule(ctx context.Context, professionalID, date string) (DaySchedule, error) {
	endpoint := fmt.Sprintf("%s/api/professionals/%s/schedule?date=%s",
		c.baseURL, url.PathEscape(professionalID), url.QueryEscape(date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return DaySchedule{}, fmt.Errorf("widget: create request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DaySchedule{}, fmt.Errorf("widget: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return DaySchedule{}, fmt.Errorf("widget: schedule fetch failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out DaySchedule
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return DaySchedule{}, fmt.Errorf("widget: decode response: %w", err)
	}
	return out, nil
}

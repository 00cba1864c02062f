package meeting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the video-conferencing provider. A nil client is valid
// and means the integration is not configured for this deployment.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	if strings.TrimSpace(endpoint) == "" || strings.TrimSpace(apiKey) == "" {
		return nil
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

type Meeting struct {
	ID      string `json:"id"`
	JoinURL string `json:"joinUrl"`
	Status  string `json:"status"`
}

type CreateMeetingRequest struct {
	AppointmentID  string `json:"appointmentId"`
	ProfessionalID string `json:"professionalProfileId"`
	ClientEmail    string `json:"clientEmail,omitempty"`
	Topic          string `json:"topic"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
}

func (c *Client) CreateMeeting(ctx context.Context, req CreateMeetingRequest) (Meeting, error) {
	if c == nil {
		return Meeting{}, errors.New("meeting client is nil")
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/meetings", bytes.NewReader(raw))
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting create request: %w", err)
	}
	httpReq.Header.Set("accept", "application/json")
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)
	// Retried creates must not mint a second room for the same booking.
	httpReq.Header.Set("idempotency-key", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Meeting{}, fmt.Errorf("meeting create failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out Meeting
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Meeting{}, fmt.Errorf("meeting decode response: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return Meeting{}, errors.New("meeting response missing id")
	}
	return out, nil
}

func (c *Client) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	if c == nil {
		return Meeting{}, errors.New("meeting client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return Meeting{}, errors.New("missing meeting id")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/meetings/"+id, nil)
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting create request: %w", err)
	}
	httpReq.Header.Set("accept", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Meeting{}, fmt.Errorf("meeting request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Meeting{}, fmt.Errorf("meeting get failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out Meeting
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Meeting{}, fmt.Errorf("meeting decode response: %w", err)
	}
	return out, nil
}

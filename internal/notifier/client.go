package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"farmwatch-backend/internal/models"
)

// SubmitResult mirrors the POST /api/motion response body.
type SubmitResult struct {
	OK        bool   `json:"ok"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
	Device    string `json:"device"`
	Location  string `json:"location"`
	Notify    bool   `json:"notify"`
	Error     string `json:"error,omitempty"`
}

// PollResult mirrors the GET /api/motion?since= response body.
type PollResult struct {
	OK           bool                `json:"ok"`
	HasNewMotion bool                `json:"hasNewMotion"`
	Motion       *models.MotionEvent `json:"motion,omitempty"`
}

// Source is the motion event source contract the pipeline talks to.
type Source interface {
	Submit(ctx context.Context, deviceID, location string) (*SubmitResult, error)
	Poll(ctx context.Context, since int64) (*PollResult, error)
}

// HTTPSource talks to a motion endpoint over HTTP. The request timeout
// keeps a hung request from occupying a polling slot indefinitely.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPSource) Submit(ctx context.Context, deviceID, location string) (*SubmitResult, error) {
	body, err := json.Marshal(map[string]string{
		"deviceId": deviceID,
		"location": location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal motion submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("motion submit returned status %d", resp.StatusCode)
	}

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode motion submit response: %w", err)
	}

	return &result, nil
}

func (s *HTTPSource) Poll(ctx context.Context, since int64) (*PollResult, error) {
	url := fmt.Sprintf("%s?since=%d", s.baseURL, since)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("motion poll returned status %d", resp.StatusCode)
	}

	var result PollResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode motion poll response: %w", err)
	}

	return &result, nil
}

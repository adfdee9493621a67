package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPConfig configures the Defender-style isolation API client.
type HTTPConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// HTTPExecutor talks to a Defender-style machine API: look a machine up
// by its DNS name, then POST an isolate action against its id.
type HTTPExecutor struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPExecutor creates an HTTP isolation client.
func NewHTTPExecutor(cfg HTTPConfig) (*HTTPExecutor, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("executor base URL is empty")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("executor token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPExecutor{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// ResolveDeviceID looks up a machine id by device name.
func (e *HTTPExecutor) ResolveDeviceID(ctx context.Context, deviceName string) (string, error) {
	filter := url.QueryEscape(fmt.Sprintf("computerDnsName eq '%s'", deviceName))
	endpoint := fmt.Sprintf("%s/machines?$filter=%s", e.baseURL, filter)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create machine lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("machine lookup failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("machine lookup failed with status %s", resp.Status)
	}

	var payload struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode machine lookup response: %w", err)
	}
	if len(payload.Value) == 0 || payload.Value[0].ID == "" {
		return "", ErrDeviceNotFound
	}
	return payload.Value[0].ID, nil
}

// Isolate quarantines one machine.
func (e *HTTPExecutor) Isolate(ctx context.Context, machineID string) error {
	endpoint := fmt.Sprintf("%s/machines/%s/isolate", e.baseURL, url.PathEscape(machineID))

	body, err := json.Marshal(map[string]string{
		"Comment":       "Automated isolation by socguard",
		"IsolationType": "Full",
	})
	if err != nil {
		return fmt.Errorf("marshal isolation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create isolation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("isolation request failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("isolation request failed with status %s", resp.Status)
	}
	return nil
}

package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"socguard/internal/logger"
	"socguard/pkg/models"
)

// WebhookConfig configures the HTTP notifier.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// WebhookNotifier posts alerts to a remote HTTP endpoint, one JSON
// document per alert.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
	now     func() time.Time
}

// NewWebhookNotifier creates an HTTP notifier.
func NewWebhookNotifier(cfg WebhookConfig) (*WebhookNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}, nil
}

type webhookAlert struct {
	Kind        string                 `json:"kind"`
	Timestamp   time.Time              `json:"timestamp"`
	Count       int                    `json:"count,omitempty"`
	Window      string                 `json:"window,omitempty"`
	Actor       string                 `json:"actor,omitempty"`
	DeviceName  string                 `json:"device_name,omitempty"`
	ThreatTitle string                 `json:"threat_title,omitempty"`
	Confidence  string                 `json:"confidence,omitempty"`
	Decision    string                 `json:"decision,omitempty"`
	DeviceCount int                    `json:"device_count,omitempty"`
	ThreatCount int                    `json:"threat_count,omitempty"`
	Summary     []models.ThreatSummary `json:"summary,omitempty"`
}

func (n *WebhookNotifier) post(alert webhookAlert) {
	alert.Timestamp = n.now().UTC()

	body, err := json.Marshal(alert)
	if err != nil {
		logger.Errorf("Failed to marshal %s alert: %v", alert.Kind, err)
		return
	}

	req, err := http.NewRequest("POST", n.url, bytes.NewReader(body))
	if err != nil {
		logger.Errorf("Failed to create %s alert request: %v", alert.Kind, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Errorf("Failed to deliver %s alert: %v", alert.Kind, err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		logger.Errorf("Alert endpoint rejected %s alert: %s", alert.Kind, resp.Status)
	}
}

func (n *WebhookNotifier) RateLimitExceeded(count int, window string) {
	n.post(webhookAlert{Kind: "rate_limit_exceeded", Count: count, Window: window})
}

func (n *WebhookNotifier) MassIsolationAttempt(count int, actor string) {
	n.post(webhookAlert{Kind: "mass_isolation_attempt", Count: count, Actor: actor})
}

func (n *WebhookNotifier) DailyLimitReached(actor string) {
	n.post(webhookAlert{Kind: "daily_limit_reached", Actor: actor})
}

func (n *WebhookNotifier) IsolationDeclined(device, threatTitle, confidence, actor string) {
	n.post(webhookAlert{
		Kind:        "isolation_declined",
		DeviceName:  device,
		ThreatTitle: threatTitle,
		Confidence:  confidence,
		Actor:       actor,
	})
}

func (n *WebhookNotifier) MassIsolationDecision(deviceCount, threatCount int, decision, actor string, summary []models.ThreatSummary) {
	n.post(webhookAlert{
		Kind:        "mass_isolation_decision",
		DeviceCount: deviceCount,
		ThreatCount: threatCount,
		Decision:    decision,
		Actor:       actor,
		Summary:     summary,
	})
}

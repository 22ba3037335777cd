package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-ffpath/internal/util"
	"github.com/sony/gobreaker"
)

// webhookTimeout bounds a single webhook delivery attempt.
const webhookTimeout = 10 * time.Second

// WebhookPayload represents the data sent to webhook endpoints.
type WebhookPayload struct {
	Event     string `json:"event"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// newWebhookBreaker returns a breaker that trips after 3 consecutive
// failures and resets after 30 seconds in the open state.
func newWebhookBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "webhook",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// sendWebhook delivers a notification to the configured webhook endpoint.
func (n *ResolverNotifier) sendWebhook(webhookURL, message string, severity Severity) error {
	if !util.IsConfigured(webhookURL) {
		return nil // Silently skip if not configured
	}

	payload := &WebhookPayload{
		Event:     "resolver_" + string(severity),
		Severity:  string(severity),
		Message:   message,
		Timestamp: util.TimestampUTC(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	_, err = n.breaker.Execute(func() (any, error) {
		return nil, postWebhook(webhookURL, jsonData)
	})
	return err
}

// postWebhook performs the actual HTTP delivery.
func postWebhook(webhookURL string, jsonData []byte) error {
	client := &http.Client{Timeout: webhookTimeout}
	resp, err := client.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return util.WrapError("send webhook request", err)
	}
	defer util.SafeCloseFunc(resp.Body, "webhook response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// SendTestWebhook sends a test webhook notification, bypassing the breaker.
func SendTestWebhook(webhookURL string) error {
	if webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	payload := &WebhookPayload{
		Event:     "test",
		Severity:  string(SeverityInfo),
		Message:   "This is a test notification from " + AppName,
		Timestamp: util.TimestampUTC(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return util.WrapError("marshal payload", err)
	}

	return postWebhook(webhookURL, jsonData)
}

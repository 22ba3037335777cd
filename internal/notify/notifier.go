// Package notify delivers resolver events to the configured notification
// channels: webhook, log file and email. Channels that are not configured
// are skipped silently; delivery failures are logged, never surfaced.
package notify

import (
	"log/slog"

	"github.com/oszuidwest/zwfm-ffpath/internal/config"
	"github.com/oszuidwest/zwfm-ffpath/internal/util"
	"github.com/sony/gobreaker"
)

// Severity classifies a notification.
type Severity string

// Notification severities.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier is the optional notification capability. Implementations must not
// block the caller and must never panic past their boundary.
type Notifier interface {
	Show(message string, severity Severity)
}

// NopNotifier is a Notifier that drops everything. It is the default when no
// notification collaborator is wired in.
type NopNotifier struct{}

// Show implements Notifier.
func (NopNotifier) Show(string, Severity) {}

// LogNotifier is a Notifier that writes to the structured log. It is the
// fallback when no channel is configured.
type LogNotifier struct{}

// Show implements Notifier.
func (LogNotifier) Show(message string, severity Severity) {
	switch severity {
	case SeverityError:
		slog.Error("resolver notification", "message", message)
	case SeverityWarning:
		slog.Warn("resolver notification", "message", message)
	default:
		slog.Info("resolver notification", "message", message)
	}
}

// ResolverNotifier fans a notification out to all configured channels.
// It is safe for concurrent use.
type ResolverNotifier struct {
	cfg *config.Config

	// breaker guards the webhook channel so a dead endpoint is not
	// hammered on every resolver cycle.
	breaker *gobreaker.CircuitBreaker
}

// NewResolverNotifier returns a ResolverNotifier configured with the given config.
func NewResolverNotifier(cfg *config.Config) *ResolverNotifier {
	return &ResolverNotifier{
		cfg:     cfg,
		breaker: newWebhookBreaker(),
	}
}

// Show delivers the notification to every configured channel. Channel sends
// run asynchronously; the caller is never blocked on network I/O.
func (n *ResolverNotifier) Show(message string, severity Severity) {
	LogNotifier{}.Show(message, severity)

	snap := n.cfg.Snapshot()

	if snap.HasWebhook() {
		go util.LogNotifyResult(
			func() error { return n.sendWebhook(snap.WebhookURL, message, severity) },
			"webhook",
		)
	}

	if snap.HasLogPath() {
		go util.LogNotifyResult(
			func() error { return appendLogEntry(snap.LogPath, message, severity) },
			"log",
		)
	}

	// Email is reserved for hard failures.
	if severity == SeverityError && snap.HasGraph() {
		go util.LogNotifyResult(
			func() error { return sendErrorEmail(&snap, message) },
			"email",
		)
	}
}

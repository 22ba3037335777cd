package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/oszuidwest/zwfm-ffpath/internal/config"
	"github.com/oszuidwest/zwfm-ffpath/internal/notify"
	"github.com/oszuidwest/zwfm-ffpath/internal/resolver"
	"github.com/oszuidwest/zwfm-ffpath/internal/types"
)

// WSCommand is a command received from a WebSocket client.
type WSCommand struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CommandHandler processes WebSocket commands.
type CommandHandler struct {
	cfg      *config.Config
	resolver *resolver.Resolver
	saver    *resolver.PathSaver
}

// NewCommandHandler creates a new command handler.
func NewCommandHandler(cfg *config.Config, res *resolver.Resolver, saver *resolver.PathSaver) *CommandHandler {
	return &CommandHandler{
		cfg:      cfg,
		resolver: res,
		saver:    saver,
	}
}

// Handle processes a WebSocket command and performs the requested action.
// Commands use slash-style format: namespace/action (e.g., "ffmpeg/detect").
func (h *CommandHandler) Handle(cmd WSCommand, send chan<- any) {
	parts := strings.SplitN(cmd.Type, "/", 3)
	namespace := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	subaction := ""
	if len(parts) > 2 {
		subaction = parts[2]
	}

	switch namespace {
	case "ffmpeg":
		h.handleFFmpeg(action, cmd, send)
	case "settings":
		h.handleSettings(action, send)
	case "notifications":
		h.handleNotifications(action, subaction, cmd, send)
	default:
		slog.Warn("unknown WebSocket command", "type", cmd.Type)
	}
}

// --- Namespace handlers ---

// handleFFmpeg routes ffmpeg/* commands
func (h *CommandHandler) handleFFmpeg(action string, cmd WSCommand, send chan<- any) {
	switch action {
	case "detect":
		h.handleDetect(cmd, send)
	case "test":
		h.handleTest(cmd, send)
	case "path":
		h.handlePathEdit(cmd, send)
	default:
		slog.Warn("unknown ffmpeg action", "action", action)
	}
}

// handleDetect processes an ffmpeg/detect command: one full auto-detection
// resolver cycle. The probe runs asynchronously; status surface updates are
// pushed separately as the cycle progresses.
func (h *CommandHandler) handleDetect(cmd WSCommand, send chan<- any) {
	HandleActionAsync(cmd, send, func() (any, error) {
		err := h.resolver.Resolve(context.Background(), resolver.ModeDetect, "")
		if err != nil {
			// Already surfaced by the resolver; the command result just
			// mirrors the failure.
			return nil, err
		}
		return nil, nil
	})
}

// handleTest processes an ffmpeg/test command: verify one explicit path.
func (h *CommandHandler) handleTest(cmd WSCommand, send chan<- any) {
	var data FFmpegTestRequest
	if !DecodeAndValidate(cmd, send, &data) {
		return
	}

	HandleActionAsync(cmd, send, func() (any, error) {
		if err := h.resolver.Resolve(context.Background(), resolver.ModeTest, data.Path); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// handlePathEdit processes an ffmpeg/path command: a debounced save of the
// edited path, straight to the dedicated endpoint. No probe, no selection,
// no blob write.
func (h *CommandHandler) handlePathEdit(cmd WSCommand, send chan<- any) {
	HandleCommand(cmd, send, func(req *FFmpegPathEditRequest) error {
		h.saver.Edit(req.Path)
		return nil
	})
}

// handleSettings routes settings/* commands
func (h *CommandHandler) handleSettings(action string, send chan<- any) {
	switch action {
	case "get":
		snap := h.cfg.Snapshot()
		SendData(send, map[string]any{
			"type":        "settings",
			"ffmpeg_path": snap.FFmpegPath,
			"webhook_url": snap.WebhookURL,
			"log_path":    snap.LogPath,
			"min_version": snap.MinVersion,
		})
	default:
		slog.Warn("unknown settings action", "action", action)
	}
}

// handleNotifications routes notifications/*/* commands
func (h *CommandHandler) handleNotifications(action, subaction string, cmd WSCommand, send chan<- any) {
	switch action {
	case "webhook":
		switch subaction {
		case "update":
			HandleCommand(cmd, send, func(req *WebhookUpdateRequest) error {
				return h.cfg.SetWebhookURL(req.URL)
			})
		case "test":
			h.handleNotificationTest(send, "webhook", func() error {
				return notify.SendTestWebhook(h.cfg.Snapshot().WebhookURL)
			})
		default:
			slog.Warn("unknown webhook action", "subaction", subaction)
		}
	case "log":
		switch subaction {
		case "update":
			HandleCommand(cmd, send, func(req *LogUpdateRequest) error {
				return h.cfg.SetLogPath(req.Path)
			})
		case "test":
			h.handleNotificationTest(send, "log", func() error {
				return notify.WriteTestLog(h.cfg.LogPath())
			})
		default:
			slog.Warn("unknown log action", "subaction", subaction)
		}
	case "email":
		switch subaction {
		case "update":
			HandleCommand(cmd, send, func(req *EmailUpdateRequest) error {
				return h.cfg.SetGraphConfig(
					req.TenantID,
					req.ClientID,
					req.ClientSecret,
					req.FromAddress,
					req.Recipients,
				)
			})
		default:
			slog.Warn("unknown email action", "subaction", subaction)
		}
	default:
		slog.Warn("unknown notifications action", "action", action)
	}
}

// handleNotificationTest runs a channel test asynchronously and sends a
// typed test result to the client.
func (h *CommandHandler) handleNotificationTest(send chan<- any, testType string, run func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("panic in test handler", "test_type", testType, "panic", r)
			}
		}()

		result := types.WSTestResult{
			Type:     "test_result",
			TestType: testType,
			Success:  true,
		}

		if err := run(); err != nil {
			slog.Error("notification test failed", "test_type", testType, "error", err)
			result.Success = false
			result.Error = err.Error()
		} else {
			slog.Info("notification test succeeded", "test_type", testType)
		}

		trySend(send, "test_result", result)
	}()
}

// SendData sends arbitrary data to the WebSocket client.
func SendData(send chan<- any, data any) {
	trySend(send, "data", data)
}

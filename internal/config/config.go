// Package config provides application configuration management.
package config

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oszuidwest/zwfm-ffpath/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultWebPort        = 8080
	DefaultProbeTimeoutMs = 10000 // HTTP timeout for detection calls
	DefaultDebounceMs     = 750   // Delay before a path edit is persisted
	DefaultMinVersion     = "4.0" // Oldest FFmpeg release the encoder tooling supports
)

// SystemConfig holds system-level settings.
type SystemConfig struct {
	FFmpegPath string `json:"ffmpeg_path"` // Path to FFmpeg binary (empty = not yet resolved)
	Port       int    `json:"port"`        // HTTP server port
}

// ProbeConfig holds detection endpoint settings.
type ProbeConfig struct {
	Endpoint   string `json:"endpoint"`    // Base URL of the detection endpoint (empty = own server)
	TimeoutMs  int64  `json:"timeout_ms"`  // HTTP timeout for probe and settings writes
	MinVersion string `json:"min_version"` // Minimum supported FFmpeg version
	DebounceMs int64  `json:"debounce_ms"` // Debounce delay for path input edits
}

// WebhookConfig holds webhook notification settings.
type WebhookConfig struct {
	URL string `json:"url"` // Webhook URL for resolver alerts
}

// LogConfig holds log file notification settings.
type LogConfig struct {
	Path string `json:"path"` // Log file path for resolver events
}

// EmailConfig holds Microsoft Graph email notification settings.
type EmailConfig struct {
	TenantID     string `json:"tenant_id"`     // Azure AD tenant ID
	ClientID     string `json:"client_id"`     // App registration client ID
	ClientSecret string `json:"client_secret"` // App registration client secret
	FromAddress  string `json:"from_address"`  // Shared mailbox sender address
	Recipients   string `json:"recipients"`    // Comma-separated recipient addresses
}

// NotificationsConfig holds all notification channel settings.
type NotificationsConfig struct {
	Webhook WebhookConfig `json:"webhook"` // Webhook settings
	Log     LogConfig     `json:"log"`     // Log file settings
	Email   EmailConfig   `json:"email"`   // Email settings
}

// Config holds all application configuration. It is safe for concurrent use.
type Config struct {
	System        SystemConfig        `json:"system"`
	Probe         ProbeConfig         `json:"probe"`
	Notifications NotificationsConfig `json:"notifications"`

	mu       sync.RWMutex
	filePath string
}

// New creates a new Config with default values.
func New(filePath string) *Config {
	return &Config{
		System: SystemConfig{
			Port: DefaultWebPort,
		},
		Probe: ProbeConfig{
			TimeoutMs:  DefaultProbeTimeoutMs,
			MinVersion: DefaultMinVersion,
			DebounceMs: DefaultDebounceMs,
		},
		Notifications: NotificationsConfig{},
		filePath:      filePath,
	}
}

// Load reads config from file, creating a default if none exists.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if os.IsNotExist(err) {
		return c.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return util.WrapError("parse config", err)
	}

	c.applyDefaults()

	if err := c.validate(); err != nil {
		return err
	}

	return nil
}

// validate checks all configuration fields for correctness.
func (c *Config) validate() error {
	if c.System.Port < 1 || c.System.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 1-65535", c.System.Port)
	}
	if c.System.FFmpegPath != "" {
		if err := util.ValidatePath("ffmpeg_path", c.System.FFmpegPath); err != nil {
			return err
		}
	}
	if len(c.Notifications.Webhook.URL) > 2048 {
		return fmt.Errorf("invalid webhook url: must be at most 2048 characters")
	}
	return nil
}

// applyDefaults sets default values for zero-value fields.
func (c *Config) applyDefaults() {
	if c.System.Port == 0 {
		c.System.Port = DefaultWebPort
	}
	if c.Probe.TimeoutMs == 0 {
		c.Probe.TimeoutMs = DefaultProbeTimeoutMs
	}
	if c.Probe.MinVersion == "" {
		c.Probe.MinVersion = DefaultMinVersion
	}
	if c.Probe.DebounceMs == 0 {
		c.Probe.DebounceMs = DefaultDebounceMs
	}
}

// saveLocked persists configuration. Caller must hold c.mu.
func (c *Config) saveLocked() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return util.WrapError("marshal config", err)
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return util.WrapError("create config directory", err)
	}

	if err := os.WriteFile(c.filePath, data, 0o600); err != nil {
		return util.WrapError("write config", err)
	}

	return nil
}

// --- Getters for individual settings ---

// GetFFmpegPath returns the configured FFmpeg binary path.
func (c *Config) GetFFmpegPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.System.FFmpegPath
}

// LogPath returns the configured log file path for notifications.
func (c *Config) LogPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Notifications.Log.Path
}

// --- Setters for individual settings ---

// SetFFmpegPath updates the FFmpeg binary path and saves the configuration.
// All other fields are preserved unchanged.
func (c *Config) SetFFmpegPath(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.System.FFmpegPath = path
	return c.saveLocked()
}

// SetWebhookURL updates the webhook URL and saves the configuration.
func (c *Config) SetWebhookURL(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Webhook.URL = url
	return c.saveLocked()
}

// SetLogPath updates the log file path and saves the configuration.
func (c *Config) SetLogPath(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Log.Path = path
	return c.saveLocked()
}

// SetGraphConfig updates all Microsoft Graph/Email configuration fields and saves.
func (c *Config) SetGraphConfig(tenantID, clientID, clientSecret, fromAddress, recipients string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Notifications.Email.TenantID = tenantID
	c.Notifications.Email.ClientID = clientID
	c.Notifications.Email.ClientSecret = clientSecret
	c.Notifications.Email.FromAddress = fromAddress
	c.Notifications.Email.Recipients = recipients
	return c.saveLocked()
}

// --- Snapshot for atomic reads ---

// Snapshot is a point-in-time copy of configuration values.
type Snapshot struct {
	// System
	WebPort    int
	FFmpegPath string

	// Probe
	ProbeEndpoint  string
	ProbeTimeoutMs int64
	MinVersion     string
	DebounceMs     int64

	// Notifications
	WebhookURL        string
	LogPath           string
	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	GraphFromAddress  string
	GraphRecipients   string
}

// Snapshot returns a point-in-time copy of all configuration values.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		WebPort:    c.System.Port,
		FFmpegPath: c.System.FFmpegPath,

		ProbeEndpoint:  c.Probe.Endpoint,
		ProbeTimeoutMs: cmp.Or(c.Probe.TimeoutMs, int64(DefaultProbeTimeoutMs)),
		MinVersion:     cmp.Or(c.Probe.MinVersion, DefaultMinVersion),
		DebounceMs:     cmp.Or(c.Probe.DebounceMs, int64(DefaultDebounceMs)),

		WebhookURL:        c.Notifications.Webhook.URL,
		LogPath:           c.Notifications.Log.Path,
		GraphTenantID:     c.Notifications.Email.TenantID,
		GraphClientID:     c.Notifications.Email.ClientID,
		GraphClientSecret: c.Notifications.Email.ClientSecret,
		GraphFromAddress:  c.Notifications.Email.FromAddress,
		GraphRecipients:   c.Notifications.Email.Recipients,
	}
}

// HasWebhook reports whether a webhook URL is configured.
func (s *Snapshot) HasWebhook() bool {
	return s.WebhookURL != ""
}

// HasGraph reports whether Microsoft Graph email notifications are configured.
func (s *Snapshot) HasGraph() bool {
	return s.GraphTenantID != "" && s.GraphClientID != "" && s.GraphClientSecret != "" &&
		s.GraphFromAddress != "" && s.GraphRecipients != ""
}

// HasLogPath reports whether a log path is configured.
func (s *Snapshot) HasLogPath() bool {
	return s.LogPath != ""
}

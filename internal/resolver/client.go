package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/oszuidwest/zwfm-ffpath/internal/types"
	"github.com/oszuidwest/zwfm-ffpath/internal/util"
)

// API routes served by the settings backend.
const (
	detectRoute   = "/api/ffmpeg/detect"
	pathRoute     = "/api/settings/ffmpeg-path"
	settingsRoute = "/api/settings"
)

// Client talks to the detection and settings endpoints over HTTP. It
// implements Prober, PathWriter and SettingsStore. No retry is attempted:
// a failed call is terminal for that resolver cycle.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the given base URL. The timeout bounds
// every request; there is no retry and no backoff.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Probe issues one detection round trip. An empty path requests
// auto-detection; a non-empty path requests verification of that exact
// executable. Failures are typed: *TransportError for network faults,
// *HTTPError for non-2xx responses.
func (c *Client) Probe(ctx context.Context, path string) (*types.ProbeResult, error) {
	var result types.ProbeResult
	req := types.FFmpegPathRequest{FFmpegPath: path}
	if err := c.postJSON(ctx, "probe ffmpeg", detectRoute, &req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveFFmpegPath persists the path to the dedicated settings endpoint as the
// sole operation. A non-2xx status is a hard failure for this write only.
func (c *Client) SaveFFmpegPath(ctx context.Context, path string) error {
	req := types.FFmpegPathRequest{FFmpegPath: path}
	return c.postJSON(ctx, "save ffmpeg path", pathRoute, &req, nil)
}

// LoadSettings fetches the generic settings blob. The blob is opaque to the
// resolver; only the ffmpeg_path field is ever rewritten.
func (c *Client) LoadSettings(ctx context.Context) (map[string]any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+settingsRoute, http.NoBody)
	if err != nil {
		return nil, util.WrapError("build settings request", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "load settings", Err: err}
	}
	defer util.SafeCloseFunc(resp.Body, "settings response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Op: "load settings", StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var blob map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&blob); err != nil {
		return nil, util.WrapError("decode settings", err)
	}
	return blob, nil
}

// SaveSettings writes the full settings blob back. The write is silent: it
// must not trigger a user-visible notification.
func (c *Client) SaveSettings(ctx context.Context, blob map[string]any) error {
	return c.postJSON(ctx, "save settings", settingsRoute, blob, nil)
}

// postJSON posts a JSON body and optionally decodes a JSON response into out.
func (c *Client) postJSON(ctx context.Context, op, route string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return util.WrapError("marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+route, bytes.NewReader(jsonData))
	if err != nil {
		return util.WrapError("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer util.SafeCloseFunc(resp.Body, "response body")()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return util.WrapError("decode response", err)
		}
	}
	return nil
}

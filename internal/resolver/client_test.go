package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientProbe_AutoDetect(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ffmpeg/detect", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"best_candidate": {"path": "/usr/bin/ffmpeg", "reachable": true, "version": "6.0"},
			"candidates": [{"path": "/usr/bin/ffmpeg", "reachable": true, "version": "6.0"}]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Probe(context.Background(), "")
	require.NoError(t, err)

	// An empty path means auto-detect: the field is omitted entirely.
	_, present := gotBody["ffmpeg_path"]
	assert.False(t, present)

	require.NotNil(t, result.BestCandidate)
	assert.True(t, result.Success)
	assert.Equal(t, "/usr/bin/ffmpeg", result.BestCandidate.Path)
	assert.Equal(t, "6.0", result.BestCandidate.Version)
}

func TestClientProbe_VerifySendsPath(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"success": true, "candidate": {"path": "/opt/ffmpeg", "reachable": true}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Probe(context.Background(), "/opt/ffmpeg")
	require.NoError(t, err)

	assert.Equal(t, "/opt/ffmpeg", gotBody["ffmpeg_path"])
	require.NotNil(t, result.Candidate)
	assert.Equal(t, "/opt/ffmpeg", result.Candidate.Path)
}

func TestClientProbe_ServerErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "detection unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	result, err := client.Probe(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, result)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "probe ffmpeg")
}

func TestClientProbe_TransportFailureIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(srv.URL, time.Second)
	_, err := client.Probe(context.Background(), "")
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "probe ffmpeg", transportErr.Op)
	assert.NotNil(t, transportErr.Unwrap())
}

func TestClientSaveFFmpegPath(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotBody, _ = req["ffmpeg_path"].(string)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, client.SaveFFmpegPath(context.Background(), "/usr/local/bin/ffmpeg"))
	assert.Equal(t, "/api/settings/ffmpeg-path", gotPath)
	assert.Equal(t, "/usr/local/bin/ffmpeg", gotBody)
}

func TestClientSettingsRoundTrip(t *testing.T) {
	stored := map[string]any{"ffmpeg_path": "/usr/bin/ffmpeg", "webhook_url": "https://hooks.example"}
	var saved map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/settings", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(stored))
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)

	blob, err := client.LoadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/ffmpeg", blob["ffmpeg_path"])

	blob["ffmpeg_path"] = "/opt/ffmpeg"
	require.NoError(t, client.SaveSettings(context.Background(), blob))
	assert.Equal(t, "/opt/ffmpeg", saved["ffmpeg_path"])
	assert.Equal(t, "https://hooks.example", saved["webhook_url"], "unrelated fields survive the round trip")
}

func TestClientLoadSettings_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.LoadSettings(context.Background())

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
}

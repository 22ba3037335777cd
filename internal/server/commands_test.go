package server

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oszuidwest/zwfm-ffpath/internal/config"
	"github.com/oszuidwest/zwfm-ffpath/internal/resolver"
	"github.com/oszuidwest/zwfm-ffpath/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProber struct {
	result *types.ProbeResult
}

func (p *stubProber) Probe(context.Context, string) (*types.ProbeResult, error) {
	return p.result, nil
}

type stubWriter struct {
	mu     sync.Mutex
	writes []string
}

func (w *stubWriter) SaveFFmpegPath(_ context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, path)
	return nil
}

func (w *stubWriter) snapshot() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.writes...)
}

func newTestHandler(t *testing.T) (*CommandHandler, *stubWriter, *config.Config) {
	t.Helper()
	cfg := config.New(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, cfg.Load())

	prober := &stubProber{result: &types.ProbeResult{
		Success:       true,
		BestCandidate: &types.Candidate{Path: "/usr/bin/ffmpeg", Reachable: true, Version: "6.0"},
		Candidates:    []types.Candidate{{Path: "/usr/bin/ffmpeg", Reachable: true, Version: "6.0"}},
	}}
	writer := &stubWriter{}
	res := resolver.New(prober, writer, resolver.Options{})
	saver := resolver.NewPathSaver(writer, 10*time.Millisecond, time.Second)
	t.Cleanup(saver.Stop)

	return NewCommandHandler(cfg, res, saver), writer, cfg
}

func TestHandle_FFmpegDetect(t *testing.T) {
	h, writer, _ := newTestHandler(t)
	send := make(chan any, 8)

	h.Handle(WSCommand{Type: "ffmpeg/detect"}, send)

	result := recvResult(t, send)
	assert.Equal(t, "ffmpeg/detect_result", result["type"])
	assert.Equal(t, true, result["success"])
	assert.Equal(t, []string{"/usr/bin/ffmpeg"}, writer.snapshot())
}

func TestHandle_FFmpegTestRequiresPath(t *testing.T) {
	h, _, _ := newTestHandler(t)
	send := make(chan any, 8)

	h.Handle(command(t, "ffmpeg/test", map[string]string{}), send)

	result := recvResult(t, send)
	assert.Equal(t, false, result["success"])
}

func TestHandle_FFmpegPathEditDebounces(t *testing.T) {
	h, writer, _ := newTestHandler(t)
	send := make(chan any, 8)

	h.Handle(command(t, "ffmpeg/path", map[string]string{"path": "/opt/ff"}), send)
	h.Handle(command(t, "ffmpeg/path", map[string]string{"path": "/opt/ffmpeg"}), send)

	// Both edits are acknowledged immediately.
	assert.Equal(t, true, recvResult(t, send)["success"])
	assert.Equal(t, true, recvResult(t, send)["success"])

	// Only the latest value reaches the writer.
	require.Eventually(t, func() bool {
		return len(writer.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"/opt/ffmpeg"}, writer.snapshot())
}

func TestHandle_SettingsGet(t *testing.T) {
	h, _, cfg := newTestHandler(t)
	require.NoError(t, cfg.SetFFmpegPath("/usr/bin/ffmpeg"))
	require.NoError(t, cfg.SetWebhookURL("https://hooks.example"))
	send := make(chan any, 8)

	h.Handle(WSCommand{Type: "settings/get"}, send)

	result := recvResult(t, send)
	assert.Equal(t, "settings", result["type"])
	assert.Equal(t, "/usr/bin/ffmpeg", result["ffmpeg_path"])
	assert.Equal(t, "https://hooks.example", result["webhook_url"])
	assert.Equal(t, config.DefaultMinVersion, result["min_version"])
}

func TestHandle_WebhookUpdate(t *testing.T) {
	h, _, cfg := newTestHandler(t)
	send := make(chan any, 8)

	h.Handle(command(t, "notifications/webhook/update",
		map[string]string{"url": "https://hooks.example/new"}), send)

	result := recvResult(t, send)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "https://hooks.example/new", cfg.Snapshot().WebhookURL)
}

func TestHandle_LogTest(t *testing.T) {
	h, _, cfg := newTestHandler(t)
	require.NoError(t, cfg.SetLogPath(filepath.Join(t.TempDir(), "notify.jsonl")))
	send := make(chan any, 8)

	h.Handle(WSCommand{Type: "notifications/log/test"}, send)

	select {
	case msg := <-send:
		result, ok := msg.(types.WSTestResult)
		require.True(t, ok, "expected a test result, got %T", msg)
		assert.Equal(t, "test_result", result.Type)
		assert.Equal(t, "log", result.TestType)
		assert.True(t, result.Success)
	case <-time.After(time.Second):
		t.Fatal("no test result within timeout")
	}
}

func TestHandle_WebhookTestWithoutURLFails(t *testing.T) {
	h, _, _ := newTestHandler(t)
	send := make(chan any, 8)

	h.Handle(WSCommand{Type: "notifications/webhook/test"}, send)

	select {
	case msg := <-send:
		result, ok := msg.(types.WSTestResult)
		require.True(t, ok, "expected a test result, got %T", msg)
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	case <-time.After(time.Second):
		t.Fatal("no test result within timeout")
	}
}

func TestHandle_UnknownCommandIsIgnored(t *testing.T) {
	h, _, _ := newTestHandler(t)
	send := make(chan any, 8)

	h.Handle(WSCommand{Type: "bogus/command"}, send)
	assert.Empty(t, send)
}

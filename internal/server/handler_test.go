package server

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oszuidwest/zwfm-ffpath/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func command(t *testing.T, cmdType string, data any) WSCommand {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return WSCommand{Type: cmdType, Data: raw}
}

func recvResult(t *testing.T, send chan any) map[string]any {
	t.Helper()
	select {
	case msg := <-send:
		result, ok := msg.(map[string]any)
		require.True(t, ok, "expected a command result, got %T", msg)
		return result
	case <-time.After(time.Second):
		t.Fatal("no response within timeout")
		return nil
	}
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		send := make(chan any, 4)
		var data FFmpegTestRequest
		ok := DecodeAndValidate(command(t, "ffmpeg/test", map[string]string{"path": "/usr/bin/ffmpeg"}), send, &data)
		require.True(t, ok)
		assert.Equal(t, "/usr/bin/ffmpeg", data.Path)
		assert.Empty(t, send)
	})

	t.Run("invalid JSON sends error", func(t *testing.T) {
		send := make(chan any, 4)
		var data FFmpegTestRequest
		cmd := WSCommand{Type: "ffmpeg/test", Data: json.RawMessage(`{broken`)}
		require.False(t, DecodeAndValidate(cmd, send, &data))

		result := recvResult(t, send)
		assert.Equal(t, "ffmpeg/test_result", result["type"])
		assert.Equal(t, false, result["success"])
	})

	t.Run("missing required field sends validation error", func(t *testing.T) {
		send := make(chan any, 4)
		var data FFmpegTestRequest
		require.False(t, DecodeAndValidate(command(t, "ffmpeg/test", map[string]string{}), send, &data))

		result := recvResult(t, send)
		assert.Equal(t, false, result["success"])

		verr, ok := result["error"].(*types.ValidationError)
		require.True(t, ok)
		require.NotEmpty(t, verr.Errors)
		assert.Equal(t, "path", verr.Errors[0].Field, "validator reports the JSON tag name")
		assert.Equal(t, "is required", verr.Errors[0].Message)
	})
}

func TestHandleCommand(t *testing.T) {
	t.Run("success response", func(t *testing.T) {
		send := make(chan any, 4)
		HandleCommand(command(t, "ffmpeg/path", map[string]string{"path": "/usr/bin/ffmpeg"}), send,
			func(req *FFmpegPathEditRequest) error {
				assert.Equal(t, "/usr/bin/ffmpeg", req.Path)
				return nil
			})

		result := recvResult(t, send)
		assert.Equal(t, "ffmpeg/path_result", result["type"])
		assert.Equal(t, true, result["success"])
	})

	t.Run("process error becomes error response", func(t *testing.T) {
		send := make(chan any, 4)
		HandleCommand(command(t, "ffmpeg/path", map[string]string{"path": "/x"}), send,
			func(*FFmpegPathEditRequest) error { return errors.New("disk full") })

		result := recvResult(t, send)
		assert.Equal(t, false, result["success"])
		assert.Equal(t, "disk full", result["error"])
	})
}

func TestHandleActionAsync(t *testing.T) {
	t.Run("result is delivered", func(t *testing.T) {
		send := make(chan any, 4)
		HandleActionAsync(WSCommand{Type: "ffmpeg/detect"}, send, func() (any, error) {
			return map[string]string{"path": "/usr/bin/ffmpeg"}, nil
		})

		result := recvResult(t, send)
		assert.Equal(t, true, result["success"])
		assert.NotNil(t, result["data"])
	})

	t.Run("panic is recovered into an error response", func(t *testing.T) {
		send := make(chan any, 4)
		HandleActionAsync(WSCommand{Type: "ffmpeg/detect"}, send, func() (any, error) {
			panic("boom")
		})

		result := recvResult(t, send)
		assert.Equal(t, false, result["success"])
		assert.Equal(t, "internal error", result["error"])
	})
}

func TestTrySend_SurvivesClosedChannel(t *testing.T) {
	send := make(chan any, 1)
	close(send)

	// Must not panic past the helper.
	assert.NotPanics(t, func() {
		trySend(send, "ffmpeg/detect", map[string]any{"type": "late"})
	})
}

func TestTrySend_FullChannelIsDropped(t *testing.T) {
	send := make(chan any, 1)
	send <- "occupied"

	assert.NotPanics(t, func() {
		trySend(send, "ffmpeg/detect", "dropped")
	})
	assert.Len(t, send, 1)
}

package resolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes []string
}

func (w *recordingWriter) SaveFFmpegPath(_ context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, path)
	return nil
}

func (w *recordingWriter) snapshot() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.writes...)
}

func TestPathSaver_CoalescesRapidEdits(t *testing.T) {
	writer := &recordingWriter{}
	saver := NewPathSaver(writer, 30*time.Millisecond, time.Second)
	defer saver.Stop()

	// A keystroke burst: only the final value may reach the writer.
	saver.Edit("/u")
	saver.Edit("/us")
	saver.Edit("/usr/bin/ffmpeg")

	require.Eventually(t, func() bool {
		return len(writer.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"/usr/bin/ffmpeg"}, writer.snapshot())
}

func TestPathSaver_SeparatedEditsEachSave(t *testing.T) {
	writer := &recordingWriter{}
	saver := NewPathSaver(writer, 10*time.Millisecond, time.Second)
	defer saver.Stop()

	saver.Edit("/opt/ffmpeg")
	require.Eventually(t, func() bool {
		return len(writer.snapshot()) == 1
	}, time.Second, 2*time.Millisecond)

	saver.Edit("/usr/bin/ffmpeg")
	require.Eventually(t, func() bool {
		return len(writer.snapshot()) == 2
	}, time.Second, 2*time.Millisecond)

	assert.Equal(t, []string{"/opt/ffmpeg", "/usr/bin/ffmpeg"}, writer.snapshot())
}

func TestPathSaver_StopCancelsPendingSave(t *testing.T) {
	writer := &recordingWriter{}
	saver := NewPathSaver(writer, 20*time.Millisecond, time.Second)

	saver.Edit("/usr/bin/ffmpeg")
	saver.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, writer.snapshot())
}

func TestDebouncer_LastTriggerWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var calls []int
	record := func(n int) func() {
		return func() {
			mu.Lock()
			calls = append(calls, n)
			mu.Unlock()
		}
	}

	d.Trigger(record(1))
	d.Trigger(record(2))
	d.Trigger(record(3))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{3}, calls)
}

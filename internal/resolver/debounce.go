package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces rapid triggers into a single call after a quiet
// period. It owns one timer; each Trigger cancels and replaces the pending
// one, so the most recent call wins and nothing is queued.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, cancelling any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// PathSaver persists debounced path input edits directly to the dedicated
// endpoint. Edits bypass candidate selection and never touch the generic
// settings blob.
type PathSaver struct {
	writer   PathWriter
	debounce *Debouncer
	timeout  time.Duration
}

// NewPathSaver returns a PathSaver writing through writer after delay of
// input inactivity. timeout bounds the eventual write.
func NewPathSaver(writer PathWriter, delay, timeout time.Duration) *PathSaver {
	return &PathSaver{
		writer:   writer,
		debounce: NewDebouncer(delay),
		timeout:  timeout,
	}
}

// Edit records a path input edit. After the quiet period the most recent
// value is written once; earlier pending writes are cancelled.
func (s *PathSaver) Edit(path string) {
	s.debounce.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.writer.SaveFFmpegPath(ctx, path); err != nil {
			slog.Error("debounced path save failed", "path", path, "error", err)
		} else {
			slog.Info("ffmpeg path saved", "path", path)
		}
	})
}

// Stop cancels any pending save.
func (s *PathSaver) Stop() {
	s.debounce.Stop()
}

package resolver

import "fmt"

// StatusKind identifies one of the mutually exclusive status surface states.
type StatusKind int

// Status surface states. Detecting and Testing are transient; the others are
// terminal for a resolver cycle.
const (
	StatusIdle StatusKind = iota
	StatusDetecting
	StatusTesting
	StatusOk
	StatusWarning
	StatusError
)

// Status is one rendered state of the status surface: a text line plus a
// single style class. States replace each other; they are never additive.
type Status struct {
	Kind StatusKind
	Text string
}

// StyleClass returns the style class for the state: "ok", "warn", "error",
// or "" for transient in-progress states.
func (s Status) StyleClass() string {
	switch s.Kind {
	case StatusOk:
		return "ok"
	case StatusWarning:
		return "warn"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// StatusDetectingState is the transient state while auto-detection runs.
func StatusDetectingState() Status {
	return Status{Kind: StatusDetecting, Text: "Detecting FFmpeg..."}
}

// StatusTestingState is the transient state while a path is verified.
func StatusTestingState() Status {
	return Status{Kind: StatusTesting, Text: "Testing FFmpeg path..."}
}

// StatusOkState reports an adopted candidate. A candidate without a version
// is shown as "version unknown".
func StatusOkState(mode Mode, path, version string) Status {
	verb := "detected"
	if mode == ModeTest {
		verb = "verified"
	}
	if version == "" {
		version = "version unknown"
	}
	return Status{
		Kind: StatusOk,
		Text: fmt.Sprintf("FFmpeg %s at %s — %s", verb, path, version),
	}
}

// StatusNotFoundState reports a successful probe with no usable candidate.
// This is the documented "not found" outcome, not a failure.
func StatusNotFoundState() Status {
	return Status{Kind: StatusWarning, Text: "FFmpeg not found. Enter the path manually."}
}

// StatusErrorState reports a transport or HTTP failure.
func StatusErrorState(message string) Status {
	return Status{Kind: StatusError, Text: "Detection failed: " + message}
}

// StatusIdleState shows the currently persisted path without a probe outcome.
func StatusIdleState(path string) Status {
	if path == "" {
		return Status{Kind: StatusIdle, Text: "FFmpeg path not configured"}
	}
	return Status{Kind: StatusIdle, Text: "Using FFmpeg at " + path}
}

// Surface renders resolver status and mirrors the path input value. A nil
// element on the UI side degrades the call to a no-op; implementations must
// never fail.
type Surface interface {
	SetStatus(status Status)

	// SetPath updates the path input value. An empty string clears the
	// input so a stale path is never left behind.
	SetPath(path string)
}

// NopSurface is a Surface that drops everything.
type NopSurface struct{}

// SetStatus implements Surface.
func (NopSurface) SetStatus(Status) {}

// SetPath implements Surface.
func (NopSurface) SetPath(string) {}

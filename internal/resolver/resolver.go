// Package resolver keeps the persisted FFmpeg path, the settings stores and
// the visible status in agreement. One resolver cycle is a single probe,
// followed by candidate selection, followed by reconciliation of both
// persistence stores and the status surface.
//
// Cycles triggered by unrelated events are not ordered with respect to each
// other: a slow detect response arriving after a faster test response may
// overwrite the surface with stale information. That race is accepted; there
// is no cancellation of in-flight cycles.
package resolver

import (
	"context"
	"log/slog"

	"github.com/oszuidwest/zwfm-ffpath/internal/notify"
	"github.com/oszuidwest/zwfm-ffpath/internal/types"
)

// blobPathKey is the settings blob field the resolver owns. All other
// fields pass through unchanged.
const blobPathKey = "ffmpeg_path"

// Prober issues one detection round trip. An empty path requests
// auto-detection, a non-empty path verification.
type Prober interface {
	Probe(ctx context.Context, path string) (*types.ProbeResult, error)
}

// PathWriter persists the resolved path to the dedicated settings endpoint.
type PathWriter interface {
	SaveFFmpegPath(ctx context.Context, path string) error
}

// SettingsStore is the optional generic settings collaborator. Its absence
// is not an error; the blob write is simply skipped.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (map[string]any, error)
	SaveSettings(ctx context.Context, blob map[string]any) error
}

// Resolver runs detection and verification cycles and reconciles their
// outcome across both persistence stores and the status surface.
type Resolver struct {
	prober   Prober
	paths    PathWriter
	settings SettingsStore // nil = capability absent
	surface  Surface
	notifier notify.Notifier
}

// Options hold the optional collaborators for a Resolver. Nil fields
// degrade to no-ops.
type Options struct {
	Settings SettingsStore
	Surface  Surface
	Notifier notify.Notifier
}

// New returns a Resolver. prober and paths are required; opts collaborators
// are optional capabilities.
func New(prober Prober, paths PathWriter, opts Options) *Resolver {
	r := &Resolver{
		prober:   prober,
		paths:    paths,
		settings: opts.Settings,
		surface:  opts.Surface,
		notifier: opts.Notifier,
	}
	if r.surface == nil {
		r.surface = NopSurface{}
	}
	if r.notifier == nil {
		r.notifier = notify.NopNotifier{}
	}
	return r
}

// Resolve runs one full resolver cycle: probe, select, reconcile. In
// ModeDetect path is ignored and may be empty; in ModeTest path is the
// executable to verify. The returned error is the typed probe failure, if
// any; it has already been converted to a status surface update, so callers
// log it rather than re-surface it.
func (r *Resolver) Resolve(ctx context.Context, mode Mode, path string) error {
	if mode == ModeDetect {
		r.surface.SetStatus(StatusDetectingState())
		path = ""
	} else {
		r.surface.SetStatus(StatusTestingState())
	}

	result, err := r.prober.Probe(ctx, path)
	if err != nil {
		r.surface.SetStatus(StatusErrorState(err.Error()))
		r.notifier.Show("FFmpeg detection failed: "+err.Error(), notify.SeverityError)
		return err
	}

	r.Reconcile(ctx, mode, SelectCandidate(result, mode))
	return nil
}

// Reconcile brings both persistence stores and the status surface into
// agreement with the selected candidate. A nil candidate is the "not found"
// outcome: the surface shows a warning, the path input is cleared and no
// persistence write occurs.
//
// The two stores are independent best-effort writes, not a transaction. A
// failed write never reverts the Ok state already shown: the in-memory
// selection is authoritative and both stores converge on the next
// successful write.
func (r *Resolver) Reconcile(ctx context.Context, mode Mode, selected *types.Candidate) {
	if selected == nil {
		r.surface.SetStatus(StatusNotFoundState())
		r.surface.SetPath("")
		r.notifier.Show("FFmpeg not found", notify.SeverityWarning)
		return
	}

	ok := StatusOkState(mode, selected.Path, selected.Version)
	r.surface.SetStatus(ok)
	r.surface.SetPath(selected.Path)
	r.notifier.Show(ok.Text, notify.SeveritySuccess)

	if err := r.paths.SaveFFmpegPath(ctx, selected.Path); err != nil {
		// Persistence lagging behind the shown success is an accepted
		// inconsistency window.
		slog.Error("failed to persist ffmpeg path", "path", selected.Path, "error", err)
	}

	r.saveBlob(ctx, selected.Path)
}

// saveBlob rewrites the ffmpeg_path field of the generic settings blob,
// preserving all other fields. The save is silent: failures are logged for
// diagnostics but never notified.
func (r *Resolver) saveBlob(ctx context.Context, path string) {
	if r.settings == nil {
		return
	}

	blob, err := r.settings.LoadSettings(ctx)
	if err != nil {
		slog.Error("failed to load settings blob", "error", err)
		return
	}
	if blob == nil {
		blob = map[string]any{}
	}
	blob[blobPathKey] = path

	if err := r.settings.SaveSettings(ctx, blob); err != nil {
		slog.Error("failed to save settings blob", "error", err)
	}
}

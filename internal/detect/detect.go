// Package detect probes the local system for FFmpeg executables and reports
// reachability and version per candidate location. It backs the detection
// endpoint; callers treat its result as an opaque oracle response.
package detect

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/oszuidwest/zwfm-ffpath/internal/types"
)

// maxSummaryLength is the maximum length for candidate summary lines.
const maxSummaryLength = 200

// wellKnownPaths lists common FFmpeg install locations per platform,
// checked after the configured path and $PATH.
func wellKnownPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
		}
	case "windows":
		return []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	default:
		return []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/ffmpeg/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
}

// Detector scans candidate FFmpeg locations.
type Detector struct {
	minVersion string
}

// New returns a Detector. minVersion is advisory: candidates older than it
// are annotated in their summary but still reported as reachable.
func New(minVersion string) *Detector {
	return &Detector{minVersion: minVersion}
}

// Detect scans the configured path, $PATH and well-known locations, and
// returns all candidates in scan order with the preferred one ranked out.
func (d *Detector) Detect(ctx context.Context, configuredPath string) *types.ProbeResult {
	var paths []string
	if configuredPath != "" {
		paths = append(paths, configuredPath)
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		paths = append(paths, p)
	}
	paths = append(paths, wellKnownPaths()...)

	result := &types.ProbeResult{Success: true, Candidates: []types.Candidate{}}
	seen := make(map[string]bool)
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		result.Candidates = append(result.Candidates, d.probe(ctx, p))
	}

	if best := rankBest(result.Candidates); best != nil {
		result.BestCandidate = best
	}

	return result
}

// Verify checks the single explicitly requested path. Candidate is only set
// when the executable actually ran; an unverifiable path still lists its
// probe outcome under Candidates.
func (d *Detector) Verify(ctx context.Context, path string) *types.ProbeResult {
	cand := d.probe(ctx, path)
	result := &types.ProbeResult{
		Success:    true,
		Candidates: []types.Candidate{cand},
	}
	if cand.Reachable {
		result.Candidate = &cand
	}
	return result
}

// probe checks one location: the executable must resolve and `-version`
// must run successfully for the candidate to count as reachable.
func (d *Detector) probe(ctx context.Context, path string) types.Candidate {
	cand := types.Candidate{Path: path}

	resolved, err := exec.LookPath(path)
	if err != nil {
		cand.Summary = "not found or not executable"
		return cand
	}

	out, err := exec.CommandContext(ctx, resolved, "-version").Output()
	if err != nil {
		cand.Summary = "found but failed to run: " + err.Error()
		return cand
	}

	cand.Reachable = true
	firstLine, _, _ := strings.Cut(string(out), "\n")
	cand.Summary = truncate(strings.TrimSpace(firstLine), maxSummaryLength)
	cand.Version = ParseVersion(firstLine)

	if cand.Version != "" && d.minVersion != "" && IsOlderVersion(cand.Version, d.minVersion) {
		cand.Summary += " (older than minimum supported " + d.minVersion + ")"
		slog.Warn("ffmpeg candidate older than minimum supported version",
			"path", path, "version", cand.Version, "min_version", d.minVersion)
	}

	return cand
}

// rankBest returns a copy of the preferred reachable candidate: highest
// parsed version first, scan order as tie-break. Nil when none is reachable.
func rankBest(candidates []types.Candidate) *types.Candidate {
	var best *types.Candidate
	for i := range candidates {
		c := &candidates[i]
		if !c.Reachable {
			continue
		}
		if best == nil || IsOlderVersion(best.Version, c.Version) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	cand := *best
	return &cand
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

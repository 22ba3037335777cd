// Package types provides shared type definitions used across the application.
package types

// Candidate describes one executable location the detection oracle examined.
// A Candidate is built fresh for every probe response and never mutated.
type Candidate struct {
	Path      string `json:"path"`
	Reachable bool   `json:"reachable"`
	Version   string `json:"version,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// ProbeResult is the full outcome of one detection or verification call.
//
// Candidates ordering reflects probe order, not preference order;
// BestCandidate is the authoritative preferred result when present.
// Candidate is only set on verification responses.
type ProbeResult struct {
	Success       bool        `json:"success"`
	BestCandidate *Candidate  `json:"best_candidate,omitempty"`
	Candidates    []Candidate `json:"candidates"`
	Candidate     *Candidate  `json:"candidate,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// FFmpegPathRequest is the request body for the detection endpoint and the
// dedicated settings endpoint. An absent or empty path on the detection
// endpoint requests auto-detection.
type FFmpegPathRequest struct {
	FFmpegPath string `json:"ffmpeg_path,omitempty" validate:"omitempty,max=4096"`
}

package resolver

import "github.com/oszuidwest/zwfm-ffpath/internal/types"

// Mode distinguishes auto-detection from verification of an explicit path.
type Mode int

// Resolver cycle modes.
const (
	// ModeDetect probes without an explicit path; the server performs its
	// own scan.
	ModeDetect Mode = iota

	// ModeTest verifies one specific path and nothing else.
	ModeTest
)

// SelectCandidate picks the single candidate to adopt from a probe result.
// Precedence, first match wins:
//
//  1. Detect mode: best_candidate if present.
//  2. Detect mode: first reachable entry in candidates, in probe order.
//  3. Test mode: the verified candidate if present.
//  4. Test mode: best_candidate if present and reachable.
//  5. Otherwise nil. A nil result is the documented "not found" outcome,
//     not an error.
//
// Auto-detection prefers the server's own ranking over raw scan order.
// Verification prefers confirmation of the exact path tested: falling back
// further in Test mode would silently substitute the user's explicit choice.
func SelectCandidate(result *types.ProbeResult, mode Mode) *types.Candidate {
	if result == nil || !result.Success {
		return nil
	}

	switch mode {
	case ModeDetect:
		if result.BestCandidate != nil {
			return result.BestCandidate
		}
		for i := range result.Candidates {
			if result.Candidates[i].Reachable {
				return &result.Candidates[i]
			}
		}
	case ModeTest:
		if result.Candidate != nil {
			return result.Candidate
		}
		if result.BestCandidate != nil && result.BestCandidate.Reachable {
			return result.BestCandidate
		}
	}

	return nil
}

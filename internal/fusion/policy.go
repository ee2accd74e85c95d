package fusion

import (
	"errors"

	"github.com/verisight-ai/verisight/internal/evidence"
)

// ErrNoSignals is returned when every layer is missing. The orchestrator maps
// this to the no-evidence result (uncertain, confidence 0.5) instead of
// failing the request.
var ErrNoSignals = errors.New("no evidence signals present")

// Fuse combines the present signals into a confidence score and verdict.
// Missing signals are dropped and the remaining weights renormalized to sum
// to 1.0. Fuse is a pure function: identical inputs always produce identical
// outputs.
func (c Config) Fuse(scores evidence.NormalizedScores) (float64, evidence.Verdict, error) {
	type weighted struct {
		sig evidence.Signal
		w   float64
	}
	signals := []weighted{
		{scores.Hash, c.WHash},
		{scores.Metadata, c.WMetadata},
		{scores.Detection, c.WDetection},
	}

	var sum, totalWeight float64
	for _, s := range signals {
		if !s.sig.Present {
			continue
		}
		sum += s.w * s.sig.Score
		totalWeight += s.w
	}
	if totalWeight == 0 {
		return 0, evidence.VerdictUncertain, ErrNoSignals
	}

	confidence := sum / totalWeight

	// Strong unresolved disagreement between the two independent signals is
	// itself evidence of low certainty: clamp toward uncertain.
	if c.inConflict(scores.Hash, scores.Detection) {
		lo, hi := 1-c.ConflictCap, c.ConflictCap
		if confidence > hi {
			confidence = hi
		} else if confidence < lo {
			confidence = lo
		}
	}

	return confidence, c.verdictFor(confidence), nil
}

// inConflict reports whether hash and detection are both present and each
// confidently at opposite poles.
func (c Config) inConflict(hash, detection evidence.Signal) bool {
	if !hash.Present || !detection.Present {
		return false
	}
	hashHigh := hash.Score >= c.ConflictHigh
	hashLow := hash.Score <= 1-c.ConflictHigh
	detHigh := detection.Score >= c.ConflictHigh
	detLow := detection.Score <= 1-c.ConflictHigh
	return (hashHigh && detLow) || (hashLow && detHigh)
}

func (c Config) verdictFor(confidence float64) evidence.Verdict {
	switch {
	case confidence >= c.AIBand:
		return evidence.VerdictAIGenerated
	case confidence <= c.HumanBand:
		return evidence.VerdictHumanCreated
	default:
		return evidence.VerdictUncertain
	}
}

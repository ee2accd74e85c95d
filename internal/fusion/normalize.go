package fusion

import "github.com/verisight-ai/verisight/internal/evidence"

// NormalizeHash maps hash-layer evidence onto the AI-likelihood axis.
// Similarity at or above the match threshold is a confirmed corpus hit; the
// band between floor and threshold is interpolated linearly so near-threshold
// images do not flip verdict on embedding noise.
func (c Config) NormalizeHash(ev *evidence.HashEvidence) evidence.Signal {
	if ev == nil {
		return evidence.Missing()
	}
	s := ev.Similarity
	switch {
	case s >= c.HashMatch:
		return evidence.Score(1.0)
	case s < c.HashFloor:
		return evidence.Score(0.0)
	default:
		return evidence.Score((s - c.HashFloor) / (c.HashMatch - c.HashFloor))
	}
}

// NormalizeMetadata maps metadata-layer evidence onto the AI-likelihood axis.
// The primary signal is inverted EXIF authenticity; detected generator
// signatures raise the score to at least SignatureFloor, and a C2PA manifest
// caps it at C2PACeiling. The cap is applied last: attested provenance
// dominates a merely-absent-EXIF signal.
func (c Config) NormalizeMetadata(ev *evidence.MetadataEvidence) evidence.Signal {
	if ev == nil {
		return evidence.Missing()
	}
	score := clamp01(1 - ev.ExifAuthenticity)
	if len(ev.AIToolSignatures) > 0 && score < c.SignatureFloor {
		score = c.SignatureFloor
	}
	if ev.HasC2PA && score > c.C2PACeiling {
		score = c.C2PACeiling
	}
	return evidence.Score(score)
}

// NormalizeDetection re-polarizes the classifier's self-confidence onto the
// shared axis: confidence in an AI label counts toward 1, confidence in a
// human label counts toward 0.
func (c Config) NormalizeDetection(ev *evidence.DetectionEvidence) evidence.Signal {
	if ev == nil {
		return evidence.Missing()
	}
	if ev.IsAIGenerated {
		return evidence.Score(clamp01(ev.Confidence))
	}
	return evidence.Score(clamp01(1 - ev.Confidence))
}

// Normalize runs all three layer normalizers. Nil evidence records become
// missing signals.
func (c Config) Normalize(h *evidence.HashEvidence, m *evidence.MetadataEvidence, d *evidence.DetectionEvidence) evidence.NormalizedScores {
	return evidence.NormalizedScores{
		Hash:      c.NormalizeHash(h),
		Metadata:  c.NormalizeMetadata(m),
		Detection: c.NormalizeDetection(d),
	}
}

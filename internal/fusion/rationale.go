package fusion

import (
	"fmt"

	"github.com/verisight-ai/verisight/internal/evidence"
)

// NoEvidenceReasoning is the rationale used when every layer failed.
const NoEvidenceReasoning = "no evidence was available: all analysis layers failed or timed out"

// Rationale renders one sentence naming the signal with the largest weighted
// contribution to the verdict. Ties break in component order
// hash > metadata > detection so output stays deterministic.
func (c Config) Rationale(scores evidence.NormalizedScores, h *evidence.HashEvidence, m *evidence.MetadataEvidence, d *evidence.DetectionEvidence) string {
	type contribution struct {
		name   string
		sig    evidence.Signal
		weight float64
	}
	// Order encodes the tie-break.
	contribs := []contribution{
		{"hash", scores.Hash, c.WHash},
		{"metadata", scores.Metadata, c.WMetadata},
		{"detection", scores.Detection, c.WDetection},
	}

	best := -1
	var bestValue float64
	for i, cb := range contribs {
		if !cb.sig.Present {
			continue
		}
		v := cb.weight * cb.sig.Score
		if best == -1 || v > bestValue {
			best = i
			bestValue = v
		}
	}
	if best == -1 {
		return NoEvidenceReasoning
	}

	switch contribs[best].name {
	case "hash":
		if h != nil && h.Matched {
			return fmt.Sprintf("perceptual hash matched the known AI-generated corpus (similarity %.2f, score %.2f)", h.Similarity, scores.Hash.Score)
		}
		sim := 0.0
		if h != nil {
			sim = h.Similarity
		}
		return fmt.Sprintf("perceptual hash similarity to known AI-generated images drove the verdict (similarity %.2f, score %.2f)", sim, scores.Hash.Score)
	case "metadata":
		if m != nil && len(m.AIToolSignatures) > 0 {
			return fmt.Sprintf("metadata carries an AI generator signature %q (exif authenticity %.2f, score %.2f)", m.AIToolSignatures[0], m.ExifAuthenticity, scores.Metadata.Score)
		}
		auth := 0.0
		if m != nil {
			auth = m.ExifAuthenticity
		}
		return fmt.Sprintf("metadata authenticity analysis drove the verdict (exif authenticity %.2f, score %.2f)", auth, scores.Metadata.Score)
	default:
		label := "human-created"
		conf := 0.0
		if d != nil {
			conf = d.Confidence
			if d.IsAIGenerated {
				label = "AI-generated"
			}
		}
		return fmt.Sprintf("ML classifier labeled the image %s with %.1f%% confidence (score %.2f)", label, conf*100, scores.Detection.Score)
	}
}

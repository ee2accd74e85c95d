package fusion

import (
	"strings"
	"testing"

	"github.com/verisight-ai/verisight/internal/evidence"
)

func TestRationale_HashDominates(t *testing.T) {
	c := DefaultConfig()
	h := &evidence.HashEvidence{Similarity: 0.92, Matched: true}
	scores := evidence.NormalizedScores{
		Hash:      evidence.Score(1.0),
		Metadata:  evidence.Score(0.1),
		Detection: evidence.Score(0.2),
	}
	got := c.Rationale(scores, h, &evidence.MetadataEvidence{}, &evidence.DetectionEvidence{})
	if !strings.Contains(got, "perceptual hash") || !strings.Contains(got, "0.92") {
		t.Fatalf("expected hash rationale with similarity, got %q", got)
	}
}

func TestRationale_MetadataSignature(t *testing.T) {
	c := DefaultConfig()
	m := &evidence.MetadataEvidence{ExifAuthenticity: 0.05, AIToolSignatures: []string{"Stable Diffusion"}}
	scores := evidence.NormalizedScores{
		Metadata:  evidence.Score(0.95),
		Detection: evidence.Score(0.3),
	}
	got := c.Rationale(scores, nil, m, &evidence.DetectionEvidence{})
	if !strings.Contains(got, "Stable Diffusion") {
		t.Fatalf("expected the detected signature in the rationale, got %q", got)
	}
}

func TestRationale_DetectionIncludesRawPercentage(t *testing.T) {
	c := DefaultConfig()
	d := &evidence.DetectionEvidence{IsAIGenerated: true, Confidence: 0.87}
	scores := evidence.NormalizedScores{
		Hash:      evidence.Score(0.1),
		Metadata:  evidence.Score(0.2),
		Detection: evidence.Score(0.87),
	}
	got := c.Rationale(scores, &evidence.HashEvidence{}, &evidence.MetadataEvidence{}, d)
	if !strings.Contains(got, "87.0%") {
		t.Fatalf("expected raw confidence percentage, got %q", got)
	}
	if !strings.Contains(got, "AI-generated") {
		t.Fatalf("expected the classifier label, got %q", got)
	}
}

// Equal weighted contributions break ties in component order
// hash > metadata > detection.
func TestRationale_TieBreakOrder(t *testing.T) {
	c := DefaultConfig()
	c.WHash, c.WMetadata, c.WDetection = 1, 1, 1
	scores := evidence.NormalizedScores{
		Hash:      evidence.Score(0.5),
		Metadata:  evidence.Score(0.5),
		Detection: evidence.Score(0.5),
	}
	got := c.Rationale(scores, &evidence.HashEvidence{Similarity: 0.78}, &evidence.MetadataEvidence{}, &evidence.DetectionEvidence{})
	if !strings.Contains(got, "perceptual hash") {
		t.Fatalf("hash should win the tie, got %q", got)
	}

	scores.Hash = evidence.Missing()
	got = c.Rationale(scores, nil, &evidence.MetadataEvidence{ExifAuthenticity: 0.5}, &evidence.DetectionEvidence{})
	if !strings.Contains(got, "metadata") {
		t.Fatalf("metadata should win the remaining tie, got %q", got)
	}
}

func TestRationale_AllMissing(t *testing.T) {
	c := DefaultConfig()
	got := c.Rationale(evidence.NormalizedScores{}, nil, nil, nil)
	if got != NoEvidenceReasoning {
		t.Fatalf("expected the no-evidence sentence, got %q", got)
	}
}

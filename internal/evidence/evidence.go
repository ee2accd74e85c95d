package evidence

import "time"

// Verdict is the final provenance call for one image.
type Verdict string

const (
	VerdictAIGenerated  Verdict = "ai_generated"
	VerdictHumanCreated Verdict = "human_created"
	VerdictUncertain    Verdict = "uncertain"
)

// HashEvidence is the perceptual-hash layer's output: the best similarity
// against the corpus of known AI-generated images.
type HashEvidence struct {
	Similarity float64 `json:"similarity"`
	Matched    bool    `json:"matched"`
	PHash      string  `json:"perceptual_hash,omitempty"`
	BestMatch  string  `json:"best_match,omitempty"`
}

// MetadataEvidence is the metadata layer's output. ExifAuthenticity is high
// when the file carries a plausible camera fingerprint (make/model, capture
// timestamp, exposure parameters). Anomalies keep their emission order so the
// record stays deterministic.
type MetadataEvidence struct {
	ExifAuthenticity float64  `json:"exif_authenticity"`
	HasC2PA          bool     `json:"has_c2pa"`
	AIToolSignatures []string `json:"ai_tool_signatures,omitempty"`
	Anomalies        []string `json:"anomalies,omitempty"`
	Software         string   `json:"software_used,omitempty"`
	FieldCount       int      `json:"exif_field_count"`
}

// DetectionEvidence is the ML layer's output. Confidence is the classifier's
// confidence in its own label, not yet on the shared AI-likelihood axis.
type DetectionEvidence struct {
	ModelName     string             `json:"model_name"`
	IsAIGenerated bool               `json:"is_ai_generated"`
	Confidence    float64            `json:"confidence"`
	RawScores     map[string]float32 `json:"raw_scores,omitempty"`
}

// Signal is one normalized score on the common "belief this image is
// AI-generated" axis, or the missing sentinel when the layer produced no
// evidence. A missing signal is excluded from fusion and its weight is
// redistributed; it is never folded into 0.0 or 1.0.
type Signal struct {
	Score   float64
	Present bool
}

// Missing is the sentinel for a layer that produced no evidence.
func Missing() Signal { return Signal{} }

// Score wraps a normalized value as a present signal.
func Score(v float64) Signal { return Signal{Score: v, Present: true} }

// NormalizedScores carries the three per-layer signals into the fusion policy.
type NormalizedScores struct {
	Hash      Signal
	Metadata  Signal
	Detection Signal
}

// AnalysisResult is the caller-facing artifact for one analyzed image. It is
// built once by the pipeline and never mutated afterwards; the raw evidence
// records are retained for auditability.
type AnalysisResult struct {
	ID              string             `json:"id"`
	Filename        string             `json:"filename"`
	AnalyzedAt      time.Time          `json:"analyzed_at"`
	FinalVerdict    Verdict            `json:"final_verdict"`
	ConfidenceScore float64            `json:"confidence_score"`
	Reasoning       string             `json:"reasoning"`
	HashResult      *HashEvidence      `json:"hash_result"`
	MetadataResult  *MetadataEvidence  `json:"metadata_result"`
	DetectionResult *DetectionEvidence `json:"detection_result"`
	LayersExecuted  []string           `json:"layers_executed"`
	TotalDurationMS float64            `json:"total_execution_time_ms"`
}

package audit

import (
	"time"

	"github.com/verisight-ai/verisight/internal/evidence"
)

// Logging levels for the audit trail. "metadata" records the verdict and
// timings only; "full" also carries the reasoning text.
const (
	LevelMetadata = "metadata"
	LevelFull     = "full"
)

// Event is the canonical audit record for one completed analysis.
type Event struct {
	Version        string    `json:"version"`
	Timestamp      time.Time `json:"timestamp"`
	AnalysisID     string    `json:"analysis_id"`
	ProjectID      string    `json:"project_id,omitempty"`
	Filename       string    `json:"filename"`
	Verdict        string    `json:"verdict"`
	Confidence     float64   `json:"confidence"`
	Reasoning      string    `json:"reasoning,omitempty"`
	LayersExecuted []string  `json:"layers_executed"`
	DurationMS     float64   `json:"duration_ms"`
}

// BuildEvent assembles an audit event from a finished analysis result.
// At LevelMetadata the reasoning text is withheld.
func BuildEvent(res *evidence.AnalysisResult, projectID, level string) *Event {
	if res == nil {
		return nil
	}
	ev := &Event{
		Version:        "1",
		Timestamp:      time.Now().UTC(),
		AnalysisID:     res.ID,
		ProjectID:      projectID,
		Filename:       res.Filename,
		Verdict:        string(res.FinalVerdict),
		Confidence:     res.ConfidenceScore,
		LayersExecuted: cloneStrings(res.LayersExecuted),
		DurationMS:     res.TotalDurationMS,
	}
	if level == LevelFull {
		ev.Reasoning = res.Reasoning
	}
	return ev
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

package audit

import (
	"fmt"
	"time"

	"github.com/verisight-ai/verisight/internal/config"
)

// BuildSinks constructs the configured sinks. An empty sink list falls
// back to stdout so the audit trail is never silently discarded.
func BuildSinks(cfg config.AuditConfig) ([]Sink, error) {
	if len(cfg.Sinks) == 0 {
		return []Sink{NewStdoutSink()}, nil
	}

	sinks := make([]Sink, 0, len(cfg.Sinks))
	for i, sc := range cfg.Sinks {
		switch sc.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink())
		case "file_jsonl":
			s, err := NewFileSink(sc.Path)
			if err != nil {
				return nil, fmt.Errorf("audit sink %d: %w", i, err)
			}
			sinks = append(sinks, s)
		case "webhook":
			s, err := NewWebhookSink(sc.URL, sc.Headers, time.Duration(sc.TimeoutMS)*time.Millisecond)
			if err != nil {
				return nil, fmt.Errorf("audit sink %d: %w", i, err)
			}
			sinks = append(sinks, s)
		default:
			return nil, fmt.Errorf("audit sink %d: unknown type %q", i, sc.Type)
		}
	}
	return sinks, nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and sane values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.AuditLevel)) {
	case "metadata", "full":
	default:
		return fmt.Errorf("logging.audit_level must be metadata or full, got %q", cfg.Logging.AuditLevel)
	}

	for _, p := range cfg.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return errors.New("project id must be set")
		}
		if len(p.APIKeys) == 0 {
			return fmt.Errorf("project %q must define at least one api_keys entry", p.ID)
		}
	}

	if err := validateLayers(cfg.Layers); err != nil {
		return err
	}
	if err := validateFusion(cfg.Fusion); err != nil {
		return err
	}

	if cfg.Batch.MaxFiles < 1 {
		return fmt.Errorf("batch.max_files must be at least 1, got %d", cfg.Batch.MaxFiles)
	}
	if cfg.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be at least 1, got %d", cfg.Batch.Workers)
	}

	if err := validateAuditConfig(cfg.Audit); err != nil {
		return err
	}
	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateLayers(l LayersConfig) error {
	if l.Hash.IsEnabled() && strings.TrimSpace(l.Hash.CorpusPath) == "" {
		return errors.New("layers.hash.corpus_path must be set when the hash layer is enabled")
	}
	if l.Detection.IsEnabled() && strings.TrimSpace(l.Detection.ModelDir) == "" {
		return errors.New("layers.detection.model_dir must be set when the detection layer is enabled")
	}
	if l.Metadata.BaselineAuthenticity < 0 || l.Metadata.BaselineAuthenticity > 1 {
		return fmt.Errorf("layers.metadata.baseline_authenticity must be in [0,1], got %v", l.Metadata.BaselineAuthenticity)
	}
	if !l.Hash.IsEnabled() && !l.Metadata.IsEnabled() && !l.Detection.IsEnabled() {
		return errors.New("at least one analysis layer must be enabled")
	}
	return nil
}

func validateFusion(f FusionConfig) error {
	if f.Weights.Hash <= 0 || f.Weights.Metadata <= 0 || f.Weights.Detection <= 0 {
		return errors.New("fusion.weights must all be positive")
	}
	if f.Bands.Human >= f.Bands.AI {
		return fmt.Errorf("fusion.bands.human (%v) must be below fusion.bands.ai (%v)", f.Bands.Human, f.Bands.AI)
	}
	if f.Bands.Human <= 0 || f.Bands.AI >= 1 {
		return errors.New("fusion.bands must lie strictly inside (0,1)")
	}
	if f.HashBand.Floor >= f.HashBand.Match {
		return fmt.Errorf("fusion.hash_band.floor (%v) must be below fusion.hash_band.match (%v)", f.HashBand.Floor, f.HashBand.Match)
	}
	if f.HashBand.Floor < 0 || f.HashBand.Match > 1 {
		return errors.New("fusion.hash_band must lie inside [0,1]")
	}
	if f.Metadata.SignatureFloor <= 0 || f.Metadata.SignatureFloor > 1 {
		return fmt.Errorf("fusion.metadata.signature_floor must be in (0,1], got %v", f.Metadata.SignatureFloor)
	}
	if f.Metadata.C2PACeiling < 0 || f.Metadata.C2PACeiling >= 1 {
		return fmt.Errorf("fusion.metadata.c2pa_ceiling must be in [0,1), got %v", f.Metadata.C2PACeiling)
	}
	if f.Conflict.High <= 0.5 || f.Conflict.High > 1 {
		return fmt.Errorf("fusion.conflict.high must be in (0.5,1], got %v", f.Conflict.High)
	}
	if f.Conflict.Cap < 0.5 || f.Conflict.Cap > 1 {
		return fmt.Errorf("fusion.conflict.cap must be in [0.5,1], got %v", f.Conflict.Cap)
	}
	return nil
}

func validateAuditConfig(a AuditConfig) error {
	for i, s := range a.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "stdout":
		case "file_jsonl":
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("audit sink %d (file_jsonl) missing path", i)
			}
		case "webhook":
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("audit sink %d (webhook) missing url", i)
			}
			u, err := url.Parse(s.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("audit sink %d (webhook) has invalid url", i)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("audit sink %d (webhook) url must be http or https", i)
			}
		default:
			return fmt.Errorf("audit sink %d has unknown type %q", i, s.Type)
		}
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
	}
	return nil
}

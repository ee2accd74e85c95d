package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/verisight-ai/verisight/internal/audit"
	"github.com/verisight-ai/verisight/internal/auth"
	"github.com/verisight-ai/verisight/internal/config"
	"github.com/verisight-ai/verisight/internal/detector"
	"github.com/verisight-ai/verisight/internal/fusion"
	"github.com/verisight-ai/verisight/internal/hashcheck"
	"github.com/verisight-ai/verisight/internal/metadata"
	"github.com/verisight-ai/verisight/internal/pipeline"
	"github.com/verisight-ai/verisight/internal/server"
	"github.com/verisight-ai/verisight/internal/telemetry"
)

const version = "1.0.0"

func main() {
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "verisight.yaml", "Path to Verisight config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	addr := cfg.Server.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}

	ctx := context.Background()

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  cfg.Telemetry.Enabled,
		Endpoint: cfg.Telemetry.Endpoint,
		Protocol: cfg.Telemetry.Protocol,
		Service:  "verisight",
		Version:  version,
	})
	if err != nil {
		log.Fatalf("failed to init telemetry: %v", err)
	}
	defer tel.Shutdown(ctx)

	// Each layer degrades independently: a layer that fails to load is
	// disabled rather than fatal, as long as at least one remains.
	var hashChecker pipeline.HashChecker
	if cfg.Layers.Hash.IsEnabled() {
		corpus, err := hashcheck.LoadCorpus(cfg.Layers.Hash.CorpusPath)
		if err != nil {
			log.Printf("hash layer disabled: %v", err)
		} else {
			log.Printf("hash corpus loaded: %d known AI hashes", corpus.Size())
			hashChecker = hashcheck.New(corpus, cfg.Fusion.HashBand.Match)
		}
	}

	var metaAnalyzer pipeline.MetadataAnalyzer
	if cfg.Layers.Metadata.IsEnabled() {
		metaAnalyzer = metadata.New(cfg.Layers.Metadata.BaselineAuthenticity)
	}

	var det pipeline.Detector
	if cfg.Layers.Detection.IsEnabled() {
		model, err := detector.LoadModel(cfg.Layers.Detection.ModelDir, cfg.Layers.Detection.InputSize)
		if err != nil {
			log.Printf("detection layer disabled: %v", err)
		} else {
			det = model
			defer model.Close()
		}
	}

	if hashChecker == nil && metaAnalyzer == nil && det == nil {
		log.Fatalf("no analysis layer could be initialized")
	}

	fcfg := fusionConfig(cfg)
	timeouts := pipeline.Timeouts{
		Hash:      time.Duration(cfg.Layers.Hash.TimeoutMS) * time.Millisecond,
		Metadata:  time.Duration(cfg.Layers.Metadata.TimeoutMS) * time.Millisecond,
		Detection: time.Duration(cfg.Layers.Detection.TimeoutMS) * time.Millisecond,
	}
	pipe := pipeline.New(hashChecker, metaAnalyzer, det, fcfg, timeouts,
		cfg.Layers.Metadata.BaselineAuthenticity, cfg.Batch.MaxFiles, cfg.Batch.Workers)
	pipe.SetLayerObserver(tel.RecordLayerDuration)

	authz, err := auth.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to build auth: %v", err)
	}

	sinks, err := audit.BuildSinks(cfg.Audit)
	if err != nil {
		log.Fatalf("failed to build audit sinks: %v", err)
	}
	emitter := audit.NewEmitter(audit.EmitterConfig{
		QueueSize: cfg.Audit.QueueSize,
		Workers:   cfg.Audit.Workers,
	}, sinks)
	defer emitter.Close(ctx)

	srv := server.New(cfg, authz, pipe, emitter, tel)

	log.Printf("Starting Verisight on %s...", addr)
	if err := srv.Start(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func fusionConfig(cfg *config.Config) fusion.Config {
	return fusion.Config{
		WHash:          cfg.Fusion.Weights.Hash,
		WMetadata:      cfg.Fusion.Weights.Metadata,
		WDetection:     cfg.Fusion.Weights.Detection,
		AIBand:         cfg.Fusion.Bands.AI,
		HumanBand:      cfg.Fusion.Bands.Human,
		HashMatch:      cfg.Fusion.HashBand.Match,
		HashFloor:      cfg.Fusion.HashBand.Floor,
		SignatureFloor: cfg.Fusion.Metadata.SignatureFloor,
		C2PACeiling:    cfg.Fusion.Metadata.C2PACeiling,
		ConflictHigh:   cfg.Fusion.Conflict.High,
		ConflictCap:    cfg.Fusion.Conflict.Cap,
	}
}

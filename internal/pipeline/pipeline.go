// Package pipeline orchestrates the three evidence layers for one image and
// fuses their outputs into a final analysis result.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/verisight-ai/verisight/internal/evidence"
	"github.com/verisight-ai/verisight/internal/fusion"
)

// ErrInvalidImage marks input that could not be decoded. In batch mode only
// the offending entry fails; in single-image mode it is surfaced to the
// caller as a rejected request.
var ErrInvalidImage = errors.New("image could not be decoded")

// ErrBatchTooLarge is returned before any collaborator is invoked.
var ErrBatchTooLarge = errors.New("batch exceeds maximum size")

// HashChecker is the perceptual-hash collaborator contract.
type HashChecker interface {
	Check(ctx context.Context, img image.Image) (*evidence.HashEvidence, error)
}

// MetadataAnalyzer is the metadata collaborator contract. It consumes raw
// bytes because EXIF/C2PA parsing needs the undecoded file.
type MetadataAnalyzer interface {
	Analyze(ctx context.Context, raw []byte) (*evidence.MetadataEvidence, error)
}

// Detector is the ML collaborator contract.
type Detector interface {
	Detect(ctx context.Context, img image.Image) (*evidence.DetectionEvidence, error)
}

// Timeouts bounds each collaborator call independently.
type Timeouts struct {
	Hash      time.Duration
	Metadata  time.Duration
	Detection time.Duration
}

// Options tunes a single analysis invocation.
type Options struct {
	// SkipDetection marks the ML layer missing without invoking the model
	// (fast analysis mode).
	SkipDetection bool
}

// Pipeline fans an image out to the three collaborators, normalizes and
// fuses whatever evidence comes back, and assembles the result. A nil
// collaborator means that layer is disabled and always missing.
type Pipeline struct {
	hash     HashChecker
	meta     MetadataAnalyzer
	detector Detector

	fusion   fusion.Config
	timeouts Timeouts

	// metaBaseline is the authenticity used when the metadata collaborator
	// itself fails (timeout), matching its own parse-failure baseline.
	metaBaseline float64

	maxBatch int
	workers  int

	// observe, when set, receives a timing sample for every collaborator
	// call, including ones that failed or timed out.
	observe func(layer string, durMS float64)
}

// New builds a Pipeline.
func New(hash HashChecker, meta MetadataAnalyzer, det Detector, fcfg fusion.Config, timeouts Timeouts, metaBaseline float64, maxBatch, workers int) *Pipeline {
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if workers <= 0 {
		workers = 4
	}
	return &Pipeline{
		hash:         hash,
		meta:         meta,
		detector:     det,
		fusion:       fcfg,
		timeouts:     timeouts,
		metaBaseline: metaBaseline,
		maxBatch:     maxBatch,
		workers:      workers,
	}
}

// SetLayerObserver installs a callback for per-layer timing samples.
func (p *Pipeline) SetLayerObserver(fn func(layer string, durMS float64)) {
	p.observe = fn
}

func (p *Pipeline) observeLayer(layer string, start time.Time) {
	if p.observe != nil {
		p.observe(layer, float64(time.Since(start).Microseconds())/1000.0)
	}
}

// Layer names as recorded in AnalysisResult.LayersExecuted.
const (
	layerHash      = "hash_check"
	layerMetadata  = "metadata_analysis"
	layerDetection = "ai_detection"
)

// Analyze runs the full three-layer analysis for one image. Collaborator
// failures and timeouts downgrade that layer to missing and never fail the
// request; only an undecodable image or caller cancellation does.
func (p *Pipeline) Analyze(ctx context.Context, raw []byte, filename string, opts Options) (*evidence.AnalysisResult, error) {
	start := time.Now()

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		wg     sync.WaitGroup
		hashEv *evidence.HashEvidence
		metaEv *evidence.MetadataEvidence
		detEv  *evidence.DetectionEvidence
	)

	if p.hash != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lctx, cancel := context.WithTimeout(ctx, p.timeouts.Hash)
			defer cancel()
			defer p.observeLayer(layerHash, time.Now())
			ev, err := p.hash.Check(lctx, img)
			if err != nil {
				log.Printf("hash layer unavailable for %q: %v", filename, err)
				return
			}
			hashEv = ev
		}()
	}

	if p.meta != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lctx, cancel := context.WithTimeout(ctx, p.timeouts.Metadata)
			defer cancel()
			defer p.observeLayer(layerMetadata, time.Now())
			ev, err := p.meta.Analyze(lctx, raw)
			if err != nil {
				// Metadata is never missing: a failed parse or timeout still
				// yields a baseline record (absence of metadata is a signal).
				log.Printf("metadata layer degraded for %q: %v", filename, err)
				metaEv = &evidence.MetadataEvidence{
					ExifAuthenticity: p.metaBaseline,
					Anomalies:        []string{"metadata analysis unavailable"},
				}
				return
			}
			metaEv = ev
		}()
	}

	if p.detector != nil && !opts.SkipDetection {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lctx, cancel := context.WithTimeout(ctx, p.timeouts.Detection)
			defer cancel()
			defer p.observeLayer(layerDetection, time.Now())
			ev, err := p.detector.Detect(lctx, img)
			if err != nil {
				log.Printf("detection layer unavailable for %q: %v", filename, err)
				return
			}
			detEv = ev
		}()
	}

	wg.Wait()

	// Caller cancellation: no partial result.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var layers []string
	if hashEv != nil {
		layers = append(layers, layerHash)
	}
	if metaEv != nil {
		layers = append(layers, layerMetadata)
	}
	if detEv != nil {
		layers = append(layers, layerDetection)
	}

	scores := p.fusion.Normalize(hashEv, metaEv, detEv)
	confidence, verdict, err := p.fusion.Fuse(scores)
	var reasoning string
	if errors.Is(err, fusion.ErrNoSignals) {
		// All layers failed: "no opinion" beats aborting.
		confidence = 0.5
		verdict = evidence.VerdictUncertain
		reasoning = fusion.NoEvidenceReasoning
	} else {
		reasoning = p.fusion.Rationale(scores, hashEv, metaEv, detEv)
	}

	return &evidence.AnalysisResult{
		ID:              uuid.NewString(),
		Filename:        filename,
		AnalyzedAt:      time.Now().UTC(),
		FinalVerdict:    verdict,
		ConfidenceScore: confidence,
		Reasoning:       reasoning,
		HashResult:      hashEv,
		MetadataResult:  metaEv,
		DetectionResult: detEv,
		LayersExecuted:  layers,
		TotalDurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

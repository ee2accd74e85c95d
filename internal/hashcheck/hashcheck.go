// Package hashcheck implements the perceptual-hash evidence layer: a
// submitted image is hashed and compared against a reference corpus of known
// AI-generated images by Hamming distance.
package hashcheck

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/corona10/goimagehash"

	"github.com/verisight-ai/verisight/internal/evidence"
)

// pHashBits is the width of a goimagehash pHash; distance/pHashBits maps the
// Hamming distance onto [0,1].
const pHashBits = 64

// ErrEmptyCorpus signals that no reference hashes are loaded. The
// orchestrator treats this layer as missing, not as a request failure.
var ErrEmptyCorpus = errors.New("reference corpus is empty")

// Checker compares images against a loaded corpus.
type Checker struct {
	corpus         *Corpus
	matchThreshold float64
}

// New builds a Checker. matchThreshold is the similarity at which a corpus
// hit counts as a confirmed match.
func New(corpus *Corpus, matchThreshold float64) *Checker {
	return &Checker{corpus: corpus, matchThreshold: matchThreshold}
}

// Check computes the image's pHash and returns the best similarity over the
// corpus. Similarity is 1 - hamming/64, so identical hashes score 1.0.
func (c *Checker) Check(ctx context.Context, img image.Image) (*evidence.HashEvidence, error) {
	if c == nil || c.corpus.Size() == 0 {
		return nil, ErrEmptyCorpus
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("perceptual hash: %w", err)
	}

	best := 0.0
	bestName := ""
	for i, ref := range c.corpus.hashes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dist, err := hash.Distance(ref)
		if err != nil {
			continue
		}
		sim := 1 - float64(dist)/pHashBits
		if sim > best {
			best = sim
			bestName = c.corpus.names[i]
		}
	}

	return &evidence.HashEvidence{
		Similarity: best,
		Matched:    best >= c.matchThreshold,
		PHash:      fmt.Sprintf("%016x", hash.GetHash()),
		BestMatch:  bestName,
	}, nil
}

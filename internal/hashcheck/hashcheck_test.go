package hashcheck

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/corona10/goimagehash"
)

// gradientImage produces a deterministic non-uniform test image so pHash has
// structure to work with.
func gradientImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8((x + y) * 2), A: 255})
		}
	}
	return img
}

func writeCorpus(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

func TestLoadCorpus_SkipsCommentsAndBlanks(t *testing.T) {
	path := writeCorpus(t, "# known AI hashes\n\nd1c2b3a495867700 midjourney-sample\n00ff00ff00ff00ff\n")
	c, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	if c.Size() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Size())
	}
	if c.names[0] != "midjourney-sample" || c.names[1] != "" {
		t.Fatalf("unexpected names: %+v", c.names)
	}
}

func TestLoadCorpus_RejectsBadHash(t *testing.T) {
	path := writeCorpus(t, "not-hex\n")
	if _, err := LoadCorpus(path); err == nil {
		t.Fatalf("expected error for invalid hash line")
	}
}

func TestCheck_SelfMatchScoresOne(t *testing.T) {
	img := gradientImage()
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		t.Fatalf("hash test image: %v", err)
	}

	path := writeCorpus(t, fmt.Sprintf("%016x self\n", hash.GetHash()))
	corpus, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}

	ev, err := New(corpus, 0.85).Check(context.Background(), img)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ev.Similarity != 1.0 || !ev.Matched {
		t.Fatalf("image against its own hash should be a confirmed match, got %+v", ev)
	}
	if ev.BestMatch != "self" {
		t.Fatalf("expected best match label, got %q", ev.BestMatch)
	}
}

func TestCheck_EmptyCorpusIsMissingLayer(t *testing.T) {
	_, err := New(&Corpus{}, 0.85).Check(context.Background(), gradientImage())
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestCheck_HonorsCancellation(t *testing.T) {
	path := writeCorpus(t, "00000000000000ff\n")
	corpus, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(corpus, 0.85).Check(ctx, gradientImage()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

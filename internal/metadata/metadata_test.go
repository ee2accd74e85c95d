package metadata

import (
	"context"
	"math"
	"strings"
	"testing"
)

func fullFingerprint() *exifFields {
	return &exifFields{
		make:         "Canon",
		model:        "EOS R5",
		timestamp:    "2024:03:01 10:22:18",
		exposureTime: true,
		fNumber:      true,
		iso:          true,
		focalLength:  true,
		gps:          true,
		lensModel:    "RF 50mm",
		count:        10,
	}
}

func TestScoreAuthenticity_FullFingerprint(t *testing.T) {
	got := scoreAuthenticity(fullFingerprint())
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("complete camera fingerprint should score 1.0, got %v", got)
	}
}

func TestScoreAuthenticity_Empty(t *testing.T) {
	if got := scoreAuthenticity(&exifFields{}); got != 0.0 {
		t.Fatalf("empty fingerprint should score 0.0, got %v", got)
	}
}

func TestScoreAuthenticity_PartialFingerprint(t *testing.T) {
	f := &exifFields{make: "Apple", model: "iPhone 15", timestamp: "2024:01:01"}
	got := scoreAuthenticity(f)
	want := wMakeModel + wTimestamp
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDetectSignatures_CanonicalNames(t *testing.T) {
	got := detectSignatures("Midjourney v6.1", "", "", "")
	if len(got) != 1 || got[0] != "Midjourney" {
		t.Fatalf("expected [Midjourney], got %v", got)
	}
}

func TestDetectSignatures_CaseInsensitiveAndDeduped(t *testing.T) {
	got := detectSignatures("STABLE DIFFUSION", "sdxl pipeline", "", "")
	if len(got) != 1 || got[0] != "Stable Diffusion" {
		t.Fatalf("expected one deduped Stable Diffusion entry, got %v", got)
	}
}

func TestDetectSignatures_CleanFields(t *testing.T) {
	if got := detectSignatures("Adobe Photoshop 25.0", "Lightroom", "", ""); len(got) != 0 {
		t.Fatalf("editing software must not trigger signatures, got %v", got)
	}
}

func TestCollectAnomalies_Order(t *testing.T) {
	f := &exifFields{}
	got := collectAnomalies(f, []string{"FLUX"}, true)
	want := []string{
		"missing camera make/model",
		"missing capture timestamp",
		"missing exposure parameters",
		"software tag names ai generator: FLUX",
		"c2pa manifest present",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d anomalies, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("anomaly %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCollectAnomalies_CleanCameraFile(t *testing.T) {
	if got := collectAnomalies(fullFingerprint(), nil, false); len(got) != 0 {
		t.Fatalf("complete fingerprint should produce no anomalies, got %v", got)
	}
}

func TestScanC2PA(t *testing.T) {
	if !scanC2PA([]byte("....jumdc2pa....")) {
		t.Fatalf("expected c2pa marker hit")
	}
	if scanC2PA([]byte("plain jpeg payload")) {
		t.Fatalf("unexpected c2pa hit")
	}
}

// Unparseable bytes still produce evidence: the layer is never missing, only
// downgraded to the baseline authenticity.
func TestAnalyze_GarbageBytesYieldBaseline(t *testing.T) {
	a := New(0.3)
	ev, err := a.Analyze(context.Background(), []byte("definitely not an image"))
	if err != nil {
		t.Fatalf("analyze must not fail on garbage: %v", err)
	}
	if ev.ExifAuthenticity != 0.3 {
		t.Fatalf("expected baseline authenticity 0.3, got %v", ev.ExifAuthenticity)
	}
	if len(ev.Anomalies) == 0 {
		t.Fatalf("expected an explanatory anomaly, got none")
	}
}

func TestAnalyze_EmptyBytes(t *testing.T) {
	a := New(0.3)
	ev, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	found := false
	for _, an := range ev.Anomalies {
		if strings.Contains(an, "no exif metadata") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected no-metadata anomaly, got %v", ev.Anomalies)
	}
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(0.3).Analyze(ctx, []byte("x")); err == nil {
		t.Fatalf("expected context error")
	}
}

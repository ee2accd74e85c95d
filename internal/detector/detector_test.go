package detector

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestPreprocess_TensorLayout(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out := preprocess(img, 224)
	if len(out) != 3*224*224 {
		t.Fatalf("expected CHW tensor of %d floats, got %d", 3*224*224, len(out))
	}
}

func TestPreprocess_NormalizationValues(t *testing.T) {
	// A pure white image normalizes each channel to (1 - mean) / std.
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	size := 4
	out := preprocess(img, size)
	plane := size * size
	for c := 0; c < 3; c++ {
		want := (1.0 - imagenetMean[c]) / imagenetStd[c]
		got := out[c*plane]
		if math.Abs(float64(got-want)) > 1e-3 {
			t.Fatalf("channel %d: expected %v, got %v", c, want, got)
		}
	}
}

func TestSoftmax_SumsToOne(t *testing.T) {
	probs := softmax([]float32{2.0, -1.0, 0.5})
	var sum float64
	for _, p := range probs {
		sum += float64(p)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Fatalf("softmax should sum to 1, got %v", sum)
	}
	if probs[0] <= probs[2] || probs[2] <= probs[1] {
		t.Fatalf("softmax must preserve ordering, got %v", probs)
	}
}

func TestSoftmax_LargeLogitsStable(t *testing.T) {
	probs := softmax([]float32{1000, 999})
	if math.IsNaN(float64(probs[0])) || probs[0] <= probs[1] {
		t.Fatalf("softmax unstable for large logits: %v", probs)
	}
}

func TestLabelPolarity(t *testing.T) {
	cases := []struct {
		label string
		want  polarity
	}{
		{"artificial", polarityAI},
		{"AI-generated", polarityAI},
		{"fake", polarityAI},
		{"synthetic_image", polarityAI},
		{"human", polarityHuman},
		{"real", polarityHuman},
		{"authentic photo", polarityHuman},
		{"landscape", polarityUnknown},
	}
	for _, tc := range cases {
		if got := labelPolarity(tc.label); got != tc.want {
			t.Fatalf("label %q: expected %v, got %v", tc.label, tc.want, got)
		}
	}
}

func TestInterpret_PolarityAndConfidence(t *testing.T) {
	m := &Model{labels: []string{"artificial", "human"}, modelName: "verisight_v1"}
	ev := m.interpret([]float32{2.0, -2.0})
	if !ev.IsAIGenerated {
		t.Fatalf("expected AI label to win, got %+v", ev)
	}
	if ev.Confidence <= 0.5 || ev.Confidence > 1.0 {
		t.Fatalf("confidence should be the winning probability, got %v", ev.Confidence)
	}
	if len(ev.RawScores) != 2 {
		t.Fatalf("raw scores must be retained, got %v", ev.RawScores)
	}

	ev = m.interpret([]float32{-2.0, 2.0})
	if ev.IsAIGenerated {
		t.Fatalf("expected human label to win, got %+v", ev)
	}
}

func TestLoadLabels_ArrayAndIndexMap(t *testing.T) {
	dir := t.TempDir()

	arrPath := filepath.Join(dir, "arr.json")
	if err := os.WriteFile(arrPath, []byte(`["artificial","human"]`), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	labels, err := loadLabels(arrPath)
	if err != nil || len(labels) != 2 || labels[0] != "artificial" {
		t.Fatalf("array labels: %v %v", labels, err)
	}

	mapPath := filepath.Join(dir, "map.json")
	if err := os.WriteFile(mapPath, []byte(`{"0":"artificial","1":"human"}`), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	labels, err = loadLabels(mapPath)
	if err != nil || len(labels) != 2 || labels[1] != "human" {
		t.Fatalf("map labels: %v %v", labels, err)
	}

	badPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badPath, []byte(`{"x":"artificial"}`), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	if _, err := loadLabels(badPath); err == nil {
		t.Fatalf("expected error for non-numeric label index")
	}
}

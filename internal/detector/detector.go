// Package detector implements the ML evidence layer: an ONNX image
// classifier that labels a decoded image as AI-generated or human-created.
package detector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/verisight-ai/verisight/internal/evidence"
)

// Model wraps the ONNX session and its pre-allocated tensors.
type Model struct {
	session   *ort.AdvancedSession
	labels    []string
	inputSize int
	modelName string

	pixelValues *ort.Tensor[float32]
	output      *ort.Tensor[float32]

	mu sync.Mutex
}

// Close releases the session and its tensors.
func (m *Model) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		_ = m.session.Destroy()
		m.session = nil
	}
	if m.pixelValues != nil {
		_ = m.pixelValues.Destroy()
		m.pixelValues = nil
	}
	if m.output != nil {
		_ = m.output.Destroy()
		m.output = nil
	}
}

// LoadModel initializes the ONNX session from a model directory containing
// model.onnx and label_map.json.
func LoadModel(modelDir string, inputSize int) (*Model, error) {
	if modelDir == "" {
		return nil, errors.New("modelDir is empty")
	}
	if inputSize <= 0 {
		inputSize = 224
	}

	libPath := resolveSharedLibraryPath(modelDir)
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(modelDir, "model.onnx")
	labelsPath := filepath.Join(modelDir, "label_map.json")

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	inputShape := ort.NewShape(1, 3, int64(inputSize), int64(inputSize))
	pixelValues, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate pixel_values tensor: %w", err)
	}
	outputShape := ort.NewShape(1, int64(len(labels)))
	output, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"pixel_values"},
		[]string{"logits"},
		[]ort.Value{pixelValues},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Model{
		session:     session,
		labels:      labels,
		inputSize:   inputSize,
		modelName:   filepath.Base(modelDir),
		pixelValues: pixelValues,
		output:      output,
	}, nil
}

// Detect runs inference on the decoded image. Inference executes in a
// goroutine so a hung runtime cannot outlive the caller's deadline; on
// timeout the layer is reported missing by the orchestrator.
func (m *Model) Detect(ctx context.Context, img image.Image) (*evidence.DetectionEvidence, error) {
	if m == nil || m.session == nil {
		return nil, errors.New("detection model not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pixels := preprocess(img, m.inputSize)

	type inferResult struct {
		logits []float32
		err    error
	}
	done := make(chan inferResult, 1)
	go func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		copy(m.pixelValues.GetData(), pixels)
		if err := m.session.Run(); err != nil {
			done <- inferResult{err: fmt.Errorf("onnx run: %w", err)}
			return
		}
		logits := make([]float32, len(m.output.GetData()))
		copy(logits, m.output.GetData())
		done <- inferResult{logits: logits}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return m.interpret(res.logits), nil
	}
}

// interpret converts logits into a polarity-labeled evidence record.
func (m *Model) interpret(logits []float32) *evidence.DetectionEvidence {
	probs := softmax(logits)

	raw := make(map[string]float32, len(m.labels))
	var aiScore, humanScore float64
	for i, label := range m.labels {
		if i >= len(probs) {
			break
		}
		raw[label] = probs[i]
		switch labelPolarity(label) {
		case polarityAI:
			aiScore += float64(probs[i])
		case polarityHuman:
			humanScore += float64(probs[i])
		}
	}

	isAI := aiScore > humanScore
	confidence := humanScore
	if isAI {
		confidence = aiScore
	}

	return &evidence.DetectionEvidence{
		ModelName:     m.modelName,
		IsAIGenerated: isAI,
		Confidence:    confidence,
		RawScores:     raw,
	}
}

type polarity int

const (
	polarityUnknown polarity = iota
	polarityAI
	polarityHuman
)

var (
	aiLabelKeys    = []string{"artificial", "ai", "fake", "generated", "synthetic"}
	humanLabelKeys = []string{"human", "real", "authentic", "natural"}
)

// labelPolarity maps a model label onto the AI/human axis by keyword, so
// differently-labeled checkpoints (artificial/human, fake/real) all work.
func labelPolarity(label string) polarity {
	l := strings.ToLower(label)
	for _, k := range aiLabelKeys {
		if strings.Contains(l, k) {
			return polarityAI
		}
	}
	for _, k := range humanLabelKeys {
		if strings.Contains(l, k) {
			return polarityHuman
		}
	}
	return polarityUnknown
}

// loadLabels accepts either a JSON array or an index->name map.
func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	out := make([]string, len(m))
	for k, v := range m {
		idx, convErr := strconv.Atoi(k)
		if convErr != nil {
			return nil, fmt.Errorf("invalid label index %q: %w", k, convErr)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

// resolveSharedLibraryPath locates a platform-specific onnxruntime shared
// library. ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common names and
// locations are probed.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

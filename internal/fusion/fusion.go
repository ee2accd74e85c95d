// Package fusion combines three independently computed evidence signals into
// one calibrated verdict. The model is a fixed-weight linear fusion over
// normalized per-layer scores with threshold bands; every verdict is
// explainable as a weighted sum of three inspectable numbers.
package fusion

// Config holds the normalization bounds, fusion weights, and verdict bands.
// All values are plain constants in the decision sense: they are configurable
// so deployments can recalibrate, but the shape of the policy never changes.
type Config struct {
	// Nominal layer weights; renormalized over present signals.
	WHash      float64
	WMetadata  float64
	WDetection float64

	// Verdict bands over the fused confidence score.
	AIBand    float64 // >= AIBand      -> ai_generated
	HumanBand float64 // <= HumanBand   -> human_created

	// Hash layer graduation: similarity >= HashMatch scores 1.0,
	// < HashFloor scores 0.0, linear in between.
	HashMatch float64
	HashFloor float64

	// Metadata layer adjustments.
	SignatureFloor float64 // AI tool signature present -> score at least this
	C2PACeiling    float64 // C2PA manifest present     -> score at most this

	// Conflict rule: hash and detection both present and each at least
	// ConflictHigh toward opposite poles clamps the fused confidence into
	// [1-ConflictCap, ConflictCap] before banding.
	ConflictHigh float64
	ConflictCap  float64
}

// DefaultConfig returns the calibrated production constants.
func DefaultConfig() Config {
	return Config{
		WHash:          0.3,
		WMetadata:      0.4,
		WDetection:     0.3,
		AIBand:         0.65,
		HumanBand:      0.35,
		HashMatch:      0.85,
		HashFloor:      0.70,
		SignatureFloor: 0.9,
		C2PACeiling:    0.2,
		ConflictHigh:   0.8,
		ConflictCap:    0.6,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

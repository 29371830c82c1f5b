package model

// Prediction label sentinels.
const (
	LabelUncertain = "Uncertain"
	LabelOther     = "Other"
)

// UncertainConfidence is the fixed confidence attached to predictions from
// a model that has not been trained. It is a sentinel, not a computed
// probability.
const UncertainConfidence = 0.1

// PredictionResult is the outcome of categorizing a single piece of text.
// Results are produced fresh per call and never cached: a user correction
// must be reflected in the very next prediction after retrain.
type PredictionResult struct {
	Label      string
	Confidence float64
}

// Uncertain returns the sentinel result produced by untrained models.
func Uncertain() PredictionResult {
	return PredictionResult{Label: LabelUncertain, Confidence: UncertainConfidence}
}

// IsUncertain reports whether the result carries the low-trust sentinel label.
func (p PredictionResult) IsUncertain() bool {
	return p.Label == LabelUncertain
}

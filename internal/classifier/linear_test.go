package classifier

import (
	"math"
	"testing"
)

func TestProbabilitiesSumToOne(t *testing.T) {
	f := newFitted([]string{"A", "B", "C"}, 4, 7)
	probs := f.probabilities([]float32{0.5, -0.2, 0.9, 0.1})

	var total float64
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Errorf("Probability %f out of range", p)
		}
		total += p
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("Probabilities sum to %f, want 1.0", total)
	}
}

func TestProbabilitiesLargeLogitsStable(t *testing.T) {
	// Hand-set huge weights so naive exp would overflow.
	f := &fitted{
		labels:  []string{"A", "B"},
		weights: [][]float64{{1000}, {999}},
		bias:    []float64{0, 0},
		dim:     1,
	}
	probs := f.probabilities([]float32{1})
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("Probability %f not finite", p)
		}
	}
	if probs[0] <= probs[1] {
		t.Errorf("Larger logit got probability %f <= %f", probs[0], probs[1])
	}
}

func TestArgmax(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
		want  int
	}{
		{"clear winner", []float64{0.1, 0.7, 0.2}, 1},
		{"first wins", []float64{0.9, 0.05, 0.05}, 0},
		{"tie resolves to lowest index", []float64{0.4, 0.4, 0.2}, 0},
		{"single element", []float64{1.0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := argmax(tt.probs); got != tt.want {
				t.Errorf("argmax(%v) = %d, want %d", tt.probs, got, tt.want)
			}
		})
	}
}

func TestFitSeparatesClasses(t *testing.T) {
	// Two well-separated clusters in two dimensions.
	f := newFitted([]string{"left", "right"}, 2, 42)
	vectors := [][]float32{
		{1, 0}, {0.9, 0.1}, {0.8, 0},
		{0, 1}, {0.1, 0.9}, {0, 0.8},
	}
	targets := []int{0, 0, 0, 1, 1, 1}

	f.fit(vectors, targets, trainEpochs, trainLearningRate)

	for i, vec := range vectors {
		probs := f.probabilities(vec)
		if got := argmax(probs); got != targets[i] {
			t.Errorf("Example %d classified as %d, want %d", i, got, targets[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := newFitted([]string{"A", "B"}, 2, 1)
	copied := original.clone()

	copied.weights[0][0] += 10
	copied.bias[1] += 5

	if original.weights[0][0] == copied.weights[0][0] {
		t.Error("Mutating clone weights changed the original")
	}
	if original.bias[1] == copied.bias[1] {
		t.Error("Mutating clone bias changed the original")
	}
}

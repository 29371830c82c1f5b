package classifier

import (
	"math"
	"math/rand"
)

// Training hyperparameters. Full-batch gradient descent with a fixed epoch
// count keeps training deterministic for a given (data, seed) pair.
const (
	trainEpochs       = 200
	trainLearningRate = 0.5
	partialEpochs     = 20
	partialRate       = 0.1
	weightInitScale   = 0.01
)

// fitted is an immutable trained decision surface. Instances are built fully
// off to the side and published by pointer swap, so concurrent readers never
// observe a half-trained model.
type fitted struct {
	labels  []string
	weights [][]float64 // one row per label, len(row) == dim
	bias    []float64
	dim     int
}

// newFitted allocates a seeded-random initial surface for the given
// vocabulary.
func newFitted(labels []string, dim int, seed int64) *fitted {
	rng := rand.New(rand.NewSource(seed))
	weights := make([][]float64, len(labels))
	for i := range weights {
		row := make([]float64, dim)
		for d := range row {
			row[d] = (rng.Float64()*2 - 1) * weightInitScale
		}
		weights[i] = row
	}
	return &fitted{
		labels:  labels,
		weights: weights,
		bias:    make([]float64, len(labels)),
		dim:     dim,
	}
}

// clone deep-copies the surface so incremental updates never mutate a
// published model.
func (f *fitted) clone() *fitted {
	weights := make([][]float64, len(f.weights))
	for i, row := range f.weights {
		weights[i] = append([]float64(nil), row...)
	}
	return &fitted{
		labels:  append([]string(nil), f.labels...),
		weights: weights,
		bias:    append([]float64(nil), f.bias...),
		dim:     f.dim,
	}
}

// labelIndex returns the position of a label in the vocabulary, or -1.
func (f *fitted) labelIndex(label string) int {
	for i, l := range f.labels {
		if l == label {
			return i
		}
	}
	return -1
}

// probabilities computes the softmax class distribution for one embedding.
func (f *fitted) probabilities(vec []float32) []float64 {
	logits := make([]float64, len(f.labels))
	maxLogit := math.Inf(-1)
	for c, row := range f.weights {
		sum := f.bias[c]
		for d := 0; d < f.dim && d < len(vec); d++ {
			sum += row[d] * float64(vec[d])
		}
		logits[c] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}

	var total float64
	probs := make([]float64, len(logits))
	for c, logit := range logits {
		probs[c] = math.Exp(logit - maxLogit)
		total += probs[c]
	}
	for c := range probs {
		probs[c] /= total
	}
	return probs
}

// argmax returns the index of the highest probability. Ties resolve to the
// lowest index, which is stable because the vocabulary order is fixed.
func argmax(probs []float64) int {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best
}

// fit runs full-batch softmax regression over the embedded examples.
// vectors[i] corresponds to targets[i], a vocabulary index.
func (f *fitted) fit(vectors [][]float32, targets []int, epochs int, rate float64) {
	n := len(vectors)
	if n == 0 {
		return
	}

	gradW := make([][]float64, len(f.labels))
	gradB := make([]float64, len(f.labels))
	for c := range gradW {
		gradW[c] = make([]float64, f.dim)
	}

	for epoch := 0; epoch < epochs; epoch++ {
		for c := range gradW {
			gradB[c] = 0
			for d := range gradW[c] {
				gradW[c][d] = 0
			}
		}

		for i, vec := range vectors {
			probs := f.probabilities(vec)
			for c := range probs {
				delta := probs[c]
				if c == targets[i] {
					delta -= 1
				}
				gradB[c] += delta
				row := gradW[c]
				for d := 0; d < f.dim && d < len(vec); d++ {
					row[d] += delta * float64(vec[d])
				}
			}
		}

		scale := rate / float64(n)
		for c := range f.weights {
			f.bias[c] -= scale * gradB[c]
			row := f.weights[c]
			for d := range row {
				row[d] -= scale * gradW[c][d]
			}
		}
	}
}

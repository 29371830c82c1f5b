package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultDim is the vector length shared by both embedder implementations.
const DefaultDim = 384

// HashingEmbedder maps text to a fixed-length vector by feature-hashing word
// unigrams, bigrams, and character trigrams into sign-weighted buckets. It is
// a pure function of its input: no weights, no load step, fully deterministic.
// It backs the pipeline when no transformer model files are configured and in
// tests.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder creates a hashing embedder with the given dimensionality.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &HashingEmbedder{dim: dim}
}

// Dim returns the embedding dimensionality.
func (h *HashingEmbedder) Dim() int {
	return h.dim
}

// Embed encodes each text into a dim-length L2-normalized vector.
func (h *HashingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embedOne(text)
	}
	return out, nil
}

func (h *HashingEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, h.dim)
	for _, feature := range extractFeatures(text) {
		bucket, sign := hashFeature(feature, h.dim)
		vec[bucket] += sign
	}
	return l2Normalize(vec)
}

// extractFeatures produces word unigrams, word bigrams, and character
// trigrams from lower-cased normalized text.
func extractFeatures(text string) []string {
	lowered := strings.ToLower(NormalizeText(text))
	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	var features []string
	for i, w := range words {
		features = append(features, "w:"+w)
		if i+1 < len(words) {
			features = append(features, "b:"+w+"_"+words[i+1])
		}
		runes := []rune(w)
		for j := 0; j+3 <= len(runes); j++ {
			features = append(features, "c:"+string(runes[j:j+3]))
		}
	}
	return features
}

// hashFeature maps a feature to a bucket index and a +1/-1 sign. The sign bit
// keeps hash collisions from accumulating in one direction.
func hashFeature(feature string, dim int) (int, float32) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	bucket := int(sum % uint64(dim))
	sign := float32(1)
	if (sum>>63)&1 == 1 {
		sign = -1
	}
	return bucket, sign
}

// l2Normalize scales a vector to unit length. Zero vectors pass through.
func l2Normalize(vec []float32) []float32 {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return vec
	}
	invNorm := float32(1.0 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= invNorm
	}
	return vec
}

// Package anomaly flags statistically unusual expense amounts with an
// unsupervised isolation forest.
package anomaly

import (
	"math"
	"math/rand"
	"sort"

	"spendsense/internal/model"
)

// MinExpenses is the floor below which detection yields no result: too few
// points to fit a meaningful outlier model.
const MinExpenses = 10

// Options configures the detector.
type Options struct {
	// Trees is the ensemble size.
	Trees int
	// SampleSize caps how many points each tree is grown from.
	SampleSize int
	// Contamination is the expected share of outliers in the data.
	Contamination float64
	// Seed fixes the ensemble's random state so the same input set always
	// yields the same anomaly set.
	Seed int64
}

// DefaultOptions returns the standard detector parameters.
func DefaultOptions() Options {
	return Options{
		Trees:         100,
		SampleSize:    256,
		Contamination: 0.02,
		Seed:          42,
	}
}

// Detect scores every expense amount with an isolation forest and returns
// those whose score clears the contamination quantile. Fewer than MinExpenses
// inputs yield an empty result, not an error.
func Detect(expenses []model.Expense, opts Options) []model.Anomaly {
	if len(expenses) < MinExpenses {
		return nil
	}
	if opts.Trees <= 0 {
		opts.Trees = DefaultOptions().Trees
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultOptions().SampleSize
	}
	if opts.Contamination <= 0 || opts.Contamination >= 1 {
		opts.Contamination = DefaultOptions().Contamination
	}

	values := make([]float64, len(expenses))
	for i := range expenses {
		values[i] = expenses[i].Amount
	}

	forest := growForest(values, opts)
	scores := make([]float64, len(values))
	for i, v := range values {
		scores[i] = forest.score(v)
	}

	threshold := scoreThreshold(scores, opts.Contamination)

	var anomalies []model.Anomaly
	for i, s := range scores {
		if s >= threshold {
			anomalies = append(anomalies, model.Anomaly{
				ExpenseID:   expenses[i].ID,
				Amount:      expenses[i].Amount,
				Description: expenses[i].Description,
				Date:        expenses[i].Date,
				Score:       s,
			})
		}
	}
	return anomalies
}

// scoreThreshold returns the cutoff above which a score counts as anomalous.
// With contamination c, the top c fraction of scores is flagged; at least one
// point always clears the cutoff.
func scoreThreshold(scores []float64, contamination float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	flagged := int(math.Ceil(contamination * float64(len(sorted))))
	if flagged < 1 {
		flagged = 1
	}
	return sorted[len(sorted)-flagged]
}

// forest is a trained isolation ensemble over one-dimensional amounts.
type forest struct {
	trees      []*isoNode
	sampleSize int
}

// isoNode is one node of an isolation tree over scalar values.
type isoNode struct {
	left  *isoNode
	right *isoNode
	split float64
	size  int
}

func growForest(values []float64, opts Options) *forest {
	rng := rand.New(rand.NewSource(opts.Seed))

	sampleSize := opts.SampleSize
	if sampleSize > len(values) {
		sampleSize = len(values)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))

	trees := make([]*isoNode, opts.Trees)
	for t := range trees {
		sample := make([]float64, sampleSize)
		for i := range sample {
			sample[i] = values[rng.Intn(len(values))]
		}
		trees[t] = growTree(sample, 0, maxDepth, rng)
	}
	return &forest{trees: trees, sampleSize: sampleSize}
}

func growTree(values []float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(values) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(values)}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return &isoNode{size: len(values)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}

	return &isoNode{
		split: split,
		size:  len(values),
		left:  growTree(left, depth+1, maxDepth, rng),
		right: growTree(right, depth+1, maxDepth, rng),
	}
}

// pathLength walks a value down a tree, adding the standard adjustment for
// unsplit leaves.
func (n *isoNode) pathLength(v float64, depth float64) float64 {
	if n.left == nil && n.right == nil {
		return depth + avgPathLength(n.size)
	}
	if v < n.split {
		return n.left.pathLength(v, depth+1)
	}
	return n.right.pathLength(v, depth+1)
}

// score computes the standard isolation-forest anomaly score in (0, 1];
// values isolated quickly score near 1.
func (f *forest) score(v float64) float64 {
	var total float64
	for _, tree := range f.trees {
		total += tree.pathLength(v, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/avgPathLength(f.sampleSize))
}

// avgPathLength is c(n), the average path length of an unsuccessful BST
// search over n points.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	fn := float64(n)
	harmonic := math.Log(fn-1) + 0.5772156649015329
	return 2*harmonic - 2*(fn-1)/fn
}

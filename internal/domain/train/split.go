package train

import (
	"math"
	"math/rand"
)

// Split holds a stratified train/test partition of a prepared dataset.
type Split struct {
	XTrain [][]float64
	YTrain []int
	XTest  [][]float64
	YTest  []int
}

// StratifiedSplit partitions (x, y) preserving the class balance of y in
// both halves. The seed makes the shuffle deterministic. Classes with more
// than one member always contribute at least one test row.
func StratifiedSplit(x [][]float64, y []int, testFraction float64, seed int64) Split {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic split for reproducible training

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	var split Split
	// Deterministic class iteration order.
	for _, label := range []int{0, 1} {
		indices := byClass[label]
		if len(indices) == 0 {
			continue
		}
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testCount := int(math.Round(testFraction * float64(len(indices))))
		if testCount == 0 && len(indices) > 1 {
			testCount = 1
		}

		for pos, idx := range indices {
			if pos < testCount {
				split.XTest = append(split.XTest, x[idx])
				split.YTest = append(split.YTest, y[idx])
			} else {
				split.XTrain = append(split.XTrain, x[idx])
				split.YTrain = append(split.YTrain, y[idx])
			}
		}
	}
	return split
}

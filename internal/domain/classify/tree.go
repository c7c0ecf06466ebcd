package classify

import (
	"math"
	"sort"
)

// TreeNode is one node of a fitted decision tree. Leaf nodes have
// Feature == -1 and carry the predicted value; internal nodes route rows
// with value <= Threshold to Left. The exported shape is what the bundle
// artifact persists.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value,omitempty"`
}

// predict walks the tree for one row.
func (n *TreeNode) predict(row []float64) float64 {
	node := n
	for node.Feature >= 0 {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// treeConfig bounds tree growth.
type treeConfig struct {
	maxDepth       int
	minSamplesLeaf int
	maxThresholds  int // cap on candidate thresholds per feature
}

// buildClassificationTree grows a CART tree minimizing gini impurity over
// the given row indices, considering only the listed features.
func buildClassificationTree(x [][]float64, y []int, rows, features []int, depth int, cfg treeConfig) *TreeNode {
	positives := 0
	for _, i := range rows {
		positives += y[i]
	}
	value := float64(positives) / float64(len(rows))

	if depth >= cfg.maxDepth || len(rows) < 2*cfg.minSamplesLeaf || positives == 0 || positives == len(rows) {
		return &TreeNode{Feature: -1, Value: value}
	}

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	parentImpurity := giniImpurity(positives, len(rows))

	for _, f := range features {
		for _, t := range candidateThresholds(x, rows, f, cfg.maxThresholds) {
			leftPos, leftTotal := 0, 0
			for _, i := range rows {
				if x[i][f] <= t {
					leftTotal++
					leftPos += y[i]
				}
			}
			rightTotal := len(rows) - leftTotal
			if leftTotal < cfg.minSamplesLeaf || rightTotal < cfg.minSamplesLeaf {
				continue
			}
			rightPos := positives - leftPos
			weighted := (float64(leftTotal)*giniImpurity(leftPos, leftTotal) +
				float64(rightTotal)*giniImpurity(rightPos, rightTotal)) / float64(len(rows))
			if gain := parentImpurity - weighted; gain > bestGain {
				bestGain, bestFeature, bestThreshold = gain, f, t
			}
		}
	}

	if bestFeature < 0 {
		return &TreeNode{Feature: -1, Value: value}
	}

	leftRows := make([]int, 0, len(rows))
	rightRows := make([]int, 0, len(rows))
	for _, i := range rows {
		if x[i][bestFeature] <= bestThreshold {
			leftRows = append(leftRows, i)
		} else {
			rightRows = append(rightRows, i)
		}
	}

	return &TreeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      buildClassificationTree(x, y, leftRows, features, depth+1, cfg),
		Right:     buildClassificationTree(x, y, rightRows, features, depth+1, cfg),
	}
}

// candidateThresholds returns split candidates for a feature: midpoints
// between consecutive distinct values, thinned to at most max candidates.
func candidateThresholds(x [][]float64, rows []int, feature, max int) []float64 {
	values := make([]float64, 0, len(rows))
	for _, i := range rows {
		values = append(values, x[i][feature])
	}
	sort.Float64s(values)

	mids := make([]float64, 0, len(values))
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			mids = append(mids, (values[i]+values[i-1])/2)
		}
	}
	if max > 0 && len(mids) > max {
		thinned := make([]float64, 0, max)
		step := float64(len(mids)) / float64(max)
		for i := 0; i < max; i++ {
			thinned = append(thinned, mids[int(math.Floor(float64(i)*step))])
		}
		mids = thinned
	}
	return mids
}

func giniImpurity(positives, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(positives) / float64(total)
	return 2 * p * (1 - p)
}

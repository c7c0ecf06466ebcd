package train

import "sort"

// Metrics are the held-out evaluation scores of one candidate.
type Metrics struct {
	Accuracy float64 `json:"accuracy"`
	F1       float64 `json:"f1"`
	AUC      float64 `json:"auc"`
}

// Evaluate computes accuracy, support-weighted F1, and rank-based AUC for
// predicted probabilities against true labels.
func Evaluate(probs []float64, y []int) Metrics {
	return Metrics{
		Accuracy: accuracy(probs, y),
		F1:       weightedF1(probs, y),
		AUC:      rocAUC(probs, y),
	}
}

func accuracy(probs []float64, y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	correct := 0
	for i, p := range probs {
		if (p >= 0.5) == (y[i] == 1) {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

// weightedF1 averages the per-class F1 scores weighted by class support.
func weightedF1(probs []float64, y []int) float64 {
	if len(y) == 0 {
		return 0
	}
	var f1Sum float64
	for _, class := range []int{0, 1} {
		var tp, fp, fn, support float64
		for i, p := range probs {
			predicted := 0
			if p >= 0.5 {
				predicted = 1
			}
			actual := y[i]
			if actual == class {
				support++
			}
			switch {
			case predicted == class && actual == class:
				tp++
			case predicted == class && actual != class:
				fp++
			case predicted != class && actual == class:
				fn++
			}
		}
		var f1 float64
		if 2*tp+fp+fn > 0 {
			f1 = 2 * tp / (2*tp + fp + fn)
		}
		f1Sum += f1 * support
	}
	return f1Sum / float64(len(y))
}

// rocAUC computes the area under the ROC curve via the rank-sum statistic,
// with average ranks for tied probabilities. A single-class test set gets
// the uninformative 0.5.
func rocAUC(probs []float64, y []int) float64 {
	var positives, negatives int
	for _, label := range y {
		if label == 1 {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return probs[order[a]] < probs[order[b]]
	})

	// Average ranks across ties.
	ranks := make([]float64, len(probs))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && probs[order[j]] == probs[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2 // 1-based average rank of the tie group
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var rankSum float64
	for i, label := range y {
		if label == 1 {
			rankSum += ranks[i]
		}
	}
	p := float64(positives)
	n := float64(negatives)
	return (rankSum - p*(p+1)/2) / (p * n)
}

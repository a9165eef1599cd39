package surrogate

import "sort"

// treeNode is a node of a regression tree. Internal nodes route on a single
// feature threshold; leaves hold the mean target of their training samples.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// predict walks the tree to a leaf.
func (n *treeNode) predict(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// buildTree grows a regression tree by recursive variance-reduction splits.
// idx selects the samples visible to this node.
func buildTree(xs [][]float64, ys []float64, idx []int, depth, maxDepth, minLeaf int) *treeNode {
	if depth >= maxDepth || len(idx) < 2*minLeaf {
		return leafNode(ys, idx)
	}

	feature, threshold, ok := bestSplit(xs, ys, idx, minLeaf)
	if !ok {
		return leafNode(ys, idx)
	}

	var left, right []int
	for _, i := range idx {
		if xs[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < minLeaf || len(right) < minLeaf {
		return leafNode(ys, idx)
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(xs, ys, left, depth+1, maxDepth, minLeaf),
		right:     buildTree(xs, ys, right, depth+1, maxDepth, minLeaf),
	}
}

func leafNode(ys []float64, idx []int) *treeNode {
	sum := 0.0
	for _, i := range idx {
		sum += ys[i]
	}
	return &treeNode{leaf: true, value: sum / float64(len(idx))}
}

// bestSplit scans every feature for the threshold with the largest reduction
// in the sum of squared errors. Prefix sums make each feature scan linear in
// the number of samples after sorting.
func bestSplit(xs [][]float64, ys []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	nFeatures := len(xs[idx[0]])

	total := 0.0
	for _, i := range idx {
		total += ys[i]
	}

	bestGain := 0.0
	order := make([]int, n)

	for j := 0; j < nFeatures; j++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return xs[order[a]][j] < xs[order[b]][j]
		})

		// Parent SSE is constant across candidate splits, so maximizing
		// the reduction is equivalent to maximizing the weighted sum of
		// squared child means.
		leftSum := 0.0
		for k := 0; k < n-1; k++ {
			leftSum += ys[order[k]]
			if k+1 < minLeaf || n-k-1 < minLeaf {
				continue
			}
			lo, hi := xs[order[k]][j], xs[order[k+1]][j]
			if lo == hi {
				continue
			}

			nl := float64(k + 1)
			nr := float64(n - k - 1)
			rightSum := total - leftSum
			gain := leftSum*leftSum/nl + rightSum*rightSum/nr - total*total/float64(n)
			if gain > bestGain {
				bestGain = gain
				feature = j
				threshold = (lo + hi) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

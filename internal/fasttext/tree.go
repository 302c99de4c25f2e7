package fasttext

type node struct {
	parent int32
	left   int32
	right  int32
	count  int64
	binary bool
}

// buildTree builds the Huffman tree used by hierarchical softmax. Leaves are
// the labels; counts are expected in descending order.
func buildTree(counts []int64) []node {
	osz := int32(len(counts))
	tree := make([]node, 2*osz-1)
	for i := range tree {
		tree[i] = node{parent: -1, left: -1, right: -1, count: 1e15}
	}
	for i := int32(0); i < osz; i++ {
		tree[i].count = counts[i]
	}

	leaf := osz - 1
	next := osz
	for i := osz; i < 2*osz-1; i++ {
		var mini [2]int32
		for j := 0; j < 2; j++ {
			if leaf >= 0 && tree[leaf].count < tree[next].count {
				mini[j] = leaf
				leaf--
			} else {
				mini[j] = next
				next++
			}
		}
		tree[i].left = mini[0]
		tree[i].right = mini[1]
		tree[i].count = tree[mini[0]].count + tree[mini[1]].count
		tree[mini[0]].parent = i
		tree[mini[1]].parent = i
		tree[mini[1]].binary = true
	}
	return tree
}

// dfs walks the tree from n, pruning branches that cannot enter the top k.
func (m *Model) dfs(k int, n int32, score float64, hidden []float32, best []scored) []scored {
	if score < stdLog(0) {
		return best
	}
	if len(best) == k && score < best[k-1].score {
		return best
	}

	nd := m.tree[n]
	if nd.left == -1 && nd.right == -1 {
		return insert(best, k, scored{score: score, label: n})
	}

	f := sigmoid(float64(dot(m.output.row(n-m.dict.nlabels), hidden)))
	best = m.dfs(k, nd.left, score+stdLog(1-f), hidden, best)
	best = m.dfs(k, nd.right, score+stdLog(f), hidden, best)
	return best
}

package assoc

import "math"

const noNode int32 = -1

// probNode is one association prefix in the lookahead tree
type probNode struct {
	// prefix length (number of associated observations)
	length int
	// claimed targets and newborns of the prefix
	k int
	b int
	// log joint prior of the prefix
	joint float64
	// class of the last association of the prefix
	kind     HypothesisKind
	children [3]int32
	expanded bool
}

// probTree is an arena of probNode addressed by index. Released slots are kept in a free list.
type probTree struct {
	nodes []probNode
	free  []int32
	root  int32
}

func (tree *probTree) reset() {
	tree.nodes = tree.nodes[:0]
	tree.free = tree.free[:0]
	tree.root = noNode
}

func (tree *probTree) alloc(node probNode) int32 {
	node.children = [3]int32{noNode, noNode, noNode}
	if n := len(tree.free); n > 0 {
		idx := tree.free[n-1]
		tree.free = tree.free[:n-1]
		tree.nodes[idx] = node
		return idx
	}
	tree.nodes = append(tree.nodes, node)
	return int32(len(tree.nodes) - 1)
}

// release returns node and its whole subtree to the free list
func (tree *probTree) release(idx int32) {
	stack := []int32{idx}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range tree.nodes[top].children {
			if child != noNode {
				stack = append(stack, child)
			}
		}
		tree.nodes[top].children = [3]int32{noNode, noNode, noNode}
		tree.nodes[top].expanded = false
		tree.free = append(tree.free, top)
	}
}

// child returns index of the child of kind or noNode
func (tree *probTree) child(idx int32, kind HypothesisKind) int32 {
	return tree.nodes[idx].children[kind]
}

// conditional returns log prior of child given its parent
func (tree *probTree) conditional(parent, child int32) float64 {
	return conditionalPrior(tree.nodes[parent].joint, tree.nodes[child].joint)
}

// advance makes the child of given kind the new root. The old root and its other subtrees are released.
func (tree *probTree) advance(kind HypothesisKind) {
	oldRoot := tree.root
	newRoot := tree.nodes[oldRoot].children[kind]
	tree.nodes[oldRoot].children[kind] = noNode
	tree.release(oldRoot)
	tree.root = newRoot
}

// size returns number of live nodes
func (tree *probTree) size() int {
	return len(tree.nodes) - len(tree.free)
}

// expand makes sure subtree of idx has children down to depth levels. Nodes with zero prior
// and complete prefixes stay leaves.
func (tree *probTree) expand(idx int32, depth int, maxLength, maxTargets int, joint func(length, k, b int) float64) {
	if depth <= 0 {
		return
	}
	node := tree.nodes[idx]
	if math.IsInf(node.joint, -1) || node.length >= maxLength {
		return
	}
	if !node.expanded {
		clutter := tree.alloc(probNode{
			length: node.length + 1, k: node.k, b: node.b,
			joint: joint(node.length+1, node.k, node.b),
			kind:  Clutter,
		})
		newborn := tree.alloc(probNode{
			length: node.length + 1, k: node.k, b: node.b + 1,
			joint: joint(node.length+1, node.k, node.b+1),
			kind:  Newborn,
		})
		existing := noNode
		if node.k < maxTargets {
			existing = tree.alloc(probNode{
				length: node.length + 1, k: node.k + 1, b: node.b,
				joint: joint(node.length+1, node.k+1, node.b),
				kind:  Existing,
			})
		}
		tree.nodes[idx].children = [3]int32{clutter, existing, newborn}
		tree.nodes[idx].expanded = true
	}
	for _, child := range tree.nodes[idx].children {
		if child != noNode {
			tree.expand(child, depth-1, maxLength, maxTargets, joint)
		}
	}
}

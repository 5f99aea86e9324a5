package tree

// LLRBNode is embedded in (or allocated alongside) the caller's record.
// A record that lives in several trees carries one node per tree.
//
// The child links form the tree, the neigh links form a circular list in
// in-order sequence that is anchored by the tree. Neighbour links are
// relations only, a node is owned by its parent (or the tree as root).
type LLRBNode[T any] struct {
	child [2]*LLRBNode[T]
	neigh [2]*LLRBNode[T]
	color RBColor
	Value T
}

func NewLLRBNode[T any](v T) *LLRBNode[T] {
	return &LLRBNode[T]{
		Value: v,
	}
}

func (node *LLRBNode[T]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *LLRBNode[T]) Left() *LLRBNode[T] {
	if node == nil {
		return nil
	}
	return node.child[Left]
}

func (node *LLRBNode[T]) Right() *LLRBNode[T] {
	if node == nil {
		return nil
	}
	return node.child[Right]
}

func (node *LLRBNode[T]) reset() {
	node.child[Left], node.child[Right] = nil, nil
	node.neigh[Left], node.neigh[Right] = nil, nil
	node.color = Black
}

// Absent nodes are black.
func isRed[T any](node *LLRBNode[T]) bool {
	return node != nil && node.color == Red
}

/*
rotate(H, Right), the mirror image for rotate(H, Left).

	    |                 |
	    H                 X
	   / \   rotate(H)   / \
	  X   C  ========>  A   H
	 / \                   / \
	A   B                 B   C

X takes over the color of H, H becomes red.
*/
func rotate[T any](h *LLRBNode[T], side LLRBSide) *LLRBNode[T] {
	near := side.opposite()
	x := h.child[near]
	if x == nil {
		// impossible run to here
		panic( /* debug assertion */ "[llrb] rotate node without a child to lift")
	}
	h.child[near] = x.child[side]
	x.child[side] = h
	x.color = h.color
	h.color = Red
	return x
}

// Both children must be present.
func colorFlip[T any](h *LLRBNode[T]) {
	h.color ^= Red
	h.child[Left].color ^= Red
	h.child[Right].color ^= Red
}

/*
fixUp restores the local invariants on unwind. The order matters, each
rule may set up the next one.

f1: Right-leaning red link, rotate left.

	  [H]              [R]
	  / \             /
	[L] <R>  ====>  <H>
	                /
	              [L]

f2: Two reds in a row on the left, rotate right.

	      [H]          [L]
	      /            / \
	    <L>    ====> <A> <H>
	    /
	  <A>

f3: Both children red (a temporary 4-node), flip to pass the red up.

	  [H]              <H>
	  / \     ====>    / \
	<L> <R>          [L] [R]
*/
func fixUp[T any](h *LLRBNode[T]) *LLRBNode[T] {
	if /* f1 */ isRed(h.child[Right]) && !isRed(h.child[Left]) {
		h = rotate(h, Left)
	}
	if /* f2 */ isRed(h.child[Left]) && isRed(h.child[Left].child[Left]) {
		h = rotate(h, Right)
	}
	if /* f3 */ isRed(h.child[Left]) && isRed(h.child[Right]) {
		colorFlip(h)
	}
	return h
}

// moveRedLeft makes h.left or one of its children red before descending
// left, so the node finally removed is never a lone black link.
func moveRedLeft[T any](h *LLRBNode[T]) *LLRBNode[T] {
	colorFlip(h)
	if isRed(h.child[Right].child[Left]) {
		h.child[Right] = rotate(h.child[Right], Right)
		h = rotate(h, Left)
		colorFlip(h)
	}
	return h
}

// moveRedRight is the mirror of moveRedLeft before descending right.
func moveRedRight[T any](h *LLRBNode[T]) *LLRBNode[T] {
	colorFlip(h)
	if isRed(h.child[Left].child[Left]) {
		h = rotate(h, Right)
		colorFlip(h)
	}
	return h
}

// spine walks down to the last node on the side.
func (node *LLRBNode[T]) spine(side LLRBSide) *LLRBNode[T] {
	aux := node
	for ; aux != nil && aux.child[side] != nil; aux = aux.child[side] {
	}
	return aux
}

// unlinkNeigh splices node out of the neighbour list, node keeps its
// own (now stale) neighbour links.
func (node *LLRBNode[T]) unlinkNeigh() {
	node.neigh[Left].neigh[Right] = node.neigh[Right]
	node.neigh[Right].neigh[Left] = node.neigh[Left]
}

// takeOver puts node in the place of old, both in the tree (children and
// color) and, if withList, in the neighbour list.
func (node *LLRBNode[T]) takeOver(old *LLRBNode[T], withList bool) {
	node.child = old.child
	node.color = old.color
	if !withList {
		return
	}
	node.neigh = old.neigh
	node.neigh[Left].neigh[Right] = node
	node.neigh[Right].neigh[Left] = node
}

package tree

// References:
// https://sedgewick.io/wp-content/themes/sedgewick/papers/2008LLRB.pdf
// https://www.cs.princeton.edu/~rs/talks/LLRB/RedBlack.pdf
//
// LLRB properties, on top of the red-black ones:
// p1. Red links lean left.
// p2. No node has two red links attached (no two reds in a row).
// p3. Every path from the root to a nil link crosses the same number
//   of black links (perfect black balance).
// p4. The root is black.
// An LLRB is a 1-1 mapping of a 2-3 tree, a red link glues a 3-node.
//
// No parent pointers: every recursive step returns the (possibly new)
// subtree root and the caller relinks it. The recursion depth is bounded
// by the height, at most 2*log2(n+1).

var _ LLRBTree[struct{}] = (*llrbTree[struct{}])(nil) // Type check assertion

type llrbTree[T any] struct {
	// End-of-list marker for the neigh links, never part of the tree.
	anchor        LLRBNode[T]
	root          *LLRBNode[T]
	compare       LLRBComparator[T]
	attachment    any
	count         int64
	noList        bool
	clearUnlinked bool
}

func (tree *llrbTree[T]) init(cmp LLRBComparator[T]) *llrbTree[T] {
	if cmp == nil {
		panic( /* debug assertion */ "[llrb] nil comparator")
	}
	tree.compare = cmp
	tree.root = nil
	tree.count = 0
	tree.anchor.child[Left], tree.anchor.child[Right] = nil, nil
	tree.anchor.neigh[Left], tree.anchor.neigh[Right] = &tree.anchor, &tree.anchor
	return tree
}

func (tree *llrbTree[T]) Len() int64 {
	return tree.count
}

func (tree *llrbTree[T]) Root() *LLRBNode[T] {
	return tree.root
}

func (tree *llrbTree[T]) Attachment() any {
	return tree.attachment
}

func (tree *llrbTree[T]) ListEnabled() bool {
	return !tree.noList
}

func (tree *llrbTree[T]) cmp(a, b *LLRBNode[T]) int {
	return tree.compare(a, b, tree)
}

/*
insert descends to a nil slot, p is the parent of the slot and side is the
side of the slot under p.

The new leaf X is the side-most node of p's subtree on that side, so its
far neighbour is p and its near neighbour is p's previous neighbour.

	     P                 ... <-> N <-> X <-> P <-> ...
	    /      ====>
	  (X)              (side = Left, N = P.neigh[Left])

At the top level p is the anchor and side is Left: the anchor's left
neighbour is the maximum, so the first node links the anchor on both sides.
*/
func (tree *llrbTree[T]) insert(
	h, x, p *LLRBNode[T],
	side LLRBSide,
	old **LLRBNode[T],
) *LLRBNode[T] {
	if h == nil {
		x.color = Red
		x.child[Left], x.child[Right] = nil, nil
		if !tree.noList {
			far := side.opposite()
			x.neigh[far] = p
			x.neigh[side] = p.neigh[side]
			x.neigh[far].neigh[side] = x
			x.neigh[side].neigh[far] = x
		}
		return x
	}

	res := tree.cmp(h, x)
	if /* replace */ res == 0 {
		*old = h
		if h != x {
			x.takeOver(h, !tree.noList)
		}
		return x
	}
	if /* h < x */ res < 0 {
		side = Right
	} else /* h > x */ {
		side = Left
	}
	h.child[side] = tree.insert(h.child[side], x, h, side, old)
	return fixUp(h)
}

func (tree *llrbTree[T]) deleteMin(h *LLRBNode[T], old **LLRBNode[T]) *LLRBNode[T] {
	if h.child[Left] == nil {
		// Black balance guarantees there is no right child either.
		*old = h
		if !tree.noList {
			h.unlinkNeigh()
		}
		return nil
	}
	if !isRed(h.child[Left]) && !isRed(h.child[Left].child[Left]) {
		h = moveRedLeft(h)
	}
	h.child[Left] = tree.deleteMin(h.child[Left], old)
	return fixUp(h)
}

/*
deleteKey requires the key to be present in the subtree of h.

d1: Going left, push a red link down the left spine as deleteMin does.

d2: Going right or matched, lean the red link right first so that the
right descent finds a red link to borrow.

d3: Matched without right child, it is a red leaf here, unlink it.

d4: Matched inner node, replace it by its successor, the minimum of the
right subtree. The successor takes over the children, the color and the
neighbour links of the removed node.

	       H                S
	      / \              / \
	     A   B   ====>    A   B'     (B' = deleteMin(B) without S)
	        /
	      .. S
*/
func (tree *llrbTree[T]) deleteKey(h, key *LLRBNode[T], old **LLRBNode[T]) *LLRBNode[T] {
	if /* d1 */ tree.cmp(key, h) < 0 {
		if !isRed(h.child[Left]) && !isRed(h.child[Left].child[Left]) {
			h = moveRedLeft(h)
		}
		h.child[Left] = tree.deleteKey(h.child[Left], key, old)
		return fixUp(h)
	}

	if /* d2 */ isRed(h.child[Left]) {
		h = rotate(h, Right)
	}
	if /* d3 */ h.child[Right] == nil && tree.cmp(key, h) == 0 {
		*old = h
		if !tree.noList {
			h.unlinkNeigh()
		}
		return nil
	}
	if !isRed(h.child[Right]) && !isRed(h.child[Right].child[Left]) {
		h = moveRedRight(h)
	}
	if /* d4 */ tree.cmp(key, h) == 0 {
		var succ *LLRBNode[T]
		h.child[Right] = tree.deleteMin(h.child[Right], &succ)
		succ.takeOver(h, !tree.noList)
		*old = h
		h = succ
	} else {
		h.child[Right] = tree.deleteKey(h.child[Right], key, old)
	}
	return fixUp(h)
}

func (tree *llrbTree[T]) unlinked(node *LLRBNode[T]) *LLRBNode[T] {
	if node != nil && tree.clearUnlinked {
		node.reset()
	}
	return node
}

func (tree *llrbTree[T]) InsertOrReplace(node *LLRBNode[T]) *LLRBNode[T] {
	if node == nil {
		return nil
	}
	var old *LLRBNode[T]
	tree.root = tree.insert(tree.root, node, &tree.anchor, Left, &old)
	tree.root.color = Black
	if old == nil {
		tree.count++
	} else if old == node {
		// Re-inserted in place, still linked.
		return old
	}
	return tree.unlinked(old)
}

func (tree *llrbTree[T]) Find(key *LLRBNode[T]) *LLRBNode[T] {
	if key == nil {
		return nil
	}
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux)
		if res == 0 {
			return aux
		} else if res < 0 {
			aux = aux.child[Left]
		} else {
			aux = aux.child[Right]
		}
	}
	return nil
}

func (tree *llrbTree[T]) Delete(key *LLRBNode[T]) *LLRBNode[T] {
	// The red pushing restructures the path on the way down, look the key
	// up first so that a miss leaves the tree as it was.
	if tree.Find(key) == nil {
		return nil
	}
	var old *LLRBNode[T]
	tree.root = tree.deleteKey(tree.root, key, &old)
	if tree.root != nil {
		tree.root.color = Black
	}
	tree.count--
	return tree.unlinked(old)
}

func (tree *llrbTree[T]) PopMin() *LLRBNode[T] {
	if tree.root == nil {
		return nil
	}
	var old *LLRBNode[T]
	tree.root = tree.deleteMin(tree.root, &old)
	if tree.root != nil {
		tree.root.color = Black
	}
	tree.count--
	return tree.unlinked(old)
}

// neighbour follows the neigh link on the side, the anchor means the end.
func (tree *llrbTree[T]) neighbour(node *LLRBNode[T], side LLRBSide) *LLRBNode[T] {
	if node == nil {
		return nil
	}
	if tree.noList {
		return tree.descend(node, side)
	}
	x := node.neigh[side]
	if x == &tree.anchor {
		return nil
	}
	return x
}

// descend finds the neighbour on the side by a walk from the root, for
// trees without the neighbour list. O(log n).
// The last node passed on the opposite branch is the closest one on the side.
func (tree *llrbTree[T]) descend(node *LLRBNode[T], side LLRBSide) *LLRBNode[T] {
	var candidate *LLRBNode[T]
	for aux := tree.root; aux != nil; {
		res := tree.cmp(node, aux)
		if side == Right && res < 0 || side == Left && res > 0 {
			candidate = aux
			aux = aux.child[side.opposite()]
		} else {
			aux = aux.child[side]
		}
	}
	return candidate
}

func (tree *llrbTree[T]) endpoint(side LLRBSide) *LLRBNode[T] {
	if tree.noList {
		return tree.root.spine(side)
	}
	// The anchor's right neighbour is the minimum, its left one the maximum.
	x := tree.anchor.neigh[side.opposite()]
	if x == &tree.anchor {
		return nil
	}
	return x
}

func (tree *llrbTree[T]) Min() *LLRBNode[T] {
	return tree.endpoint(Left)
}

func (tree *llrbTree[T]) Max() *LLRBNode[T] {
	return tree.endpoint(Right)
}

func (tree *llrbTree[T]) Next(node *LLRBNode[T]) *LLRBNode[T] {
	return tree.neighbour(node, Right)
}

func (tree *llrbTree[T]) Prev(node *LLRBNode[T]) *LLRBNode[T] {
	return tree.neighbour(node, Left)
}

// Inorder traversal to implement the DFS.
// The neighbour list is not used so that it is also available without it.
func (tree *llrbTree[T]) Foreach(action func(idx int64, node *LLRBNode[T]) bool) {
	aux := tree.root
	if aux == nil || action == nil {
		return
	}

	stack := make([]*LLRBNode[T], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.child[Left] {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if !action(idx, aux) {
			return
		}
		idx++
		for aux = aux.child[Right]; aux != nil; aux = aux.child[Left] {
			stack = append(stack, aux)
		}
	}
}

func (tree *llrbTree[T]) Release() {
	if tree.clearUnlinked {
		nodes := make([]*LLRBNode[T], 0, tree.count)
		tree.Foreach(func(_ int64, node *LLRBNode[T]) bool {
			nodes = append(nodes, node)
			return true
		})
		for _, node := range nodes {
			node.reset()
		}
	}
	tree.init(tree.compare)
}

type LLRBTreeOpt[T any] func(*llrbTree[T])

// WithLLRBNoList disables the neighbour list. Insertions and deletions
// skip the list bookkeeping, Min and Max walk the spines and Next and
// Prev search from the root.
func WithLLRBNoList[T any]() LLRBTreeOpt[T] {
	return func(tree *llrbTree[T]) {
		tree.noList = true
	}
}

// WithLLRBAttachment stores per-tree context for the comparator,
// e.g. a collator.
func WithLLRBAttachment[T any](attachment any) LLRBTreeOpt[T] {
	return func(tree *llrbTree[T]) {
		tree.attachment = attachment
	}
}

// WithLLRBClearUnlinked resets the links and the color of every node that
// leaves the tree (replaced, deleted, popped or released). By default they
// are left stale, so Next and Prev on a removed node still report its
// former neighbours.
func WithLLRBClearUnlinked[T any]() LLRBTreeOpt[T] {
	return func(tree *llrbTree[T]) {
		tree.clearUnlinked = true
	}
}

func NewLLRBTree[T any](cmp LLRBComparator[T], opts ...LLRBTreeOpt[T]) LLRBTree[T] {
	tree := &llrbTree[T]{}
	for _, o := range opts {
		o(tree)
	}
	return tree.init(cmp)
}

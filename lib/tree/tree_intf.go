package tree

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

// LLRBSide indexes both the child links and the neighbour links of a node.
type LLRBSide uint8

const (
	Left LLRBSide = iota
	Right
)

func (s LLRBSide) opposite() LLRBSide {
	return 1 - s
}

func (s LLRBSide) String() string {
	switch s {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
	}
	return "LLRBSide(unknown)"
}

// LLRBComparator is strcmp-like.
//  1. a == b, return 0
//  2. a < b, return negative
//  3. a > b, return positive
//
// It must be a stable total order over all the nodes resident in the tree.
// The tree is passed in so the order may depend on per-tree context, see
// LLRBTree.Attachment.
type LLRBComparator[T any] func(a, b *LLRBNode[T], tree LLRBTree[T]) int

// LLRBTree is an intrusive left-leaning red-black tree.
// The nodes are allocated and owned by the caller, the tree only
// relinks them. It is not thread safe.
type LLRBTree[T any] interface {
	Len() int64
	Root() *LLRBNode[T]
	Attachment() any
	ListEnabled() bool
	// InsertOrReplace links node into the tree. If a node equal to it is
	// already present, node takes its place and the previous one is returned.
	InsertOrReplace(node *LLRBNode[T]) *LLRBNode[T]
	// Find returns the node equal to key, key may be a transient node
	// used for the comparison only.
	Find(key *LLRBNode[T]) *LLRBNode[T]
	// Delete unlinks and returns the node equal to key.
	// Returns nil and leaves the tree untouched if there is no such node.
	Delete(key *LLRBNode[T]) *LLRBNode[T]
	// PopMin unlinks and returns the minimum node.
	PopMin() *LLRBNode[T]
	Min() *LLRBNode[T]
	Max() *LLRBNode[T]
	// Next returns the in-order successor of node or nil at the end.
	Next(node *LLRBNode[T]) *LLRBNode[T]
	// Prev returns the in-order predecessor of node or nil at the start.
	Prev(node *LLRBNode[T]) *LLRBNode[T]
	Foreach(action func(idx int64, node *LLRBNode[T]) bool)
	// Release forgets all the nodes. The nodes are reset only with
	// WithLLRBClearUnlinked.
	Release()
}

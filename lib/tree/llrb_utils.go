package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// llrb rule validation utilities.

var (
	ErrRedViolation       = errors.New("llrb red violation")
	ErrBlackViolation     = errors.New("llrb black violation")
	ErrLeanViolation      = errors.New("llrb lean violation")
	ErrRootColorViolation = errors.New("llrb root color violation")
	ErrOrderViolation     = errors.New("llrb order violation")
	ErrListViolation      = errors.New("llrb neighbour list violation")
	ErrLenViolation       = errors.New("llrb length violation")
)

// postorder visits the subtree of h bottom-up with an explicit stack
// and feeds the results of the children to fn.
func postorder[T any, R any](h *LLRBNode[T], nilRes R, fn func(node *LLRBNode[T], l, r R) (R, error)) (R, error) {
	if h == nil {
		return nilRes, nil
	}

	type frame struct {
		node    *LLRBNode[T]
		visited bool
	}
	stack := []frame{{node: h}}
	results := make([]R, 0, 64)
	defer func() {
		clear(stack)
	}()

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.visited {
			top.visited = true
			node := top.node
			for _, side := range [2]LLRBSide{Right, Left} {
				if c := node.child[side]; c != nil {
					stack = append(stack, frame{node: c})
				}
			}
			continue
		}
		node := top.node
		stack = stack[:len(stack)-1]

		l, r := nilRes, nilRes
		if node.child[Right] != nil {
			r, results = results[len(results)-1], results[:len(results)-1]
		}
		if node.child[Left] != nil {
			l, results = results[len(results)-1], results[:len(results)-1]
		}
		res, err := fn(node, l, r)
		if err != nil {
			return res, err
		}
		results = append(results, res)
	}
	return results[0], nil
}

// RedViolationValidate reports two red links in a row.
func RedViolationValidate[T any](tree LLRBTree[T]) error {
	_, err := postorder[T, struct{}](tree.Root(), struct{}{}, func(node *LLRBNode[T], _, _ struct{}) (struct{}, error) {
		if isRed(node) && (isRed(node.child[Left]) || isRed(node.child[Right])) {
			return struct{}{}, ErrRedViolation
		}
		return struct{}{}, nil
	})
	return err
}

/*
<X> is a RED link.
[X] is a BLACK link (or NIL).

	         [13]
	         /  \
	      <8>    [15]
	      / \    /  \
	   [6] [11] [14] [17]
	   /
	 <1>

2-3 tree like:

	     <8> --- [13]
	    /  \         \
	<1>-[6] [11]    [15]
	               /    \
	            [14]    [17]

Each nil link to root black depth are equal.
*/
func BlackViolationValidate[T any](tree LLRBTree[T]) error {
	_, err := postorder[T, int](tree.Root(), 0, func(node *LLRBNode[T], l, r int) (int, error) {
		if l != r {
			return 0, fmt.Errorf("%w: black heights %d and %d under the same node", ErrBlackViolation, l, r)
		}
		if !isRed(node) {
			l++
		}
		return l, nil
	})
	return err
}

// LeanViolationValidate reports a red right link.
func LeanViolationValidate[T any](tree LLRBTree[T]) error {
	_, err := postorder[T, struct{}](tree.Root(), struct{}{}, func(node *LLRBNode[T], _, _ struct{}) (struct{}, error) {
		if isRed(node.child[Right]) {
			return struct{}{}, ErrLeanViolation
		}
		return struct{}{}, nil
	})
	return err
}

// OrderViolationValidate checks the inorder sequence is strictly increasing.
func OrderViolationValidate[T any](tree LLRBTree[T], cmp LLRBComparator[T]) error {
	var (
		prev *LLRBNode[T]
		err  error
	)
	tree.Foreach(func(idx int64, node *LLRBNode[T]) bool {
		if prev != nil && cmp(prev, node, tree) >= 0 {
			err = fmt.Errorf("%w: at inorder index %d", ErrOrderViolation, idx)
			return false
		}
		prev = node
		return true
	})
	return err
}

// ListViolationValidate checks the neighbour list against an inorder
// traversal, in both directions.
func ListViolationValidate[T any](tree LLRBTree[T]) error {
	if !tree.ListEnabled() {
		return nil
	}

	inorder := make([]*LLRBNode[T], 0, tree.Len())
	tree.Foreach(func(_ int64, node *LLRBNode[T]) bool {
		inorder = append(inorder, node)
		return true
	})

	if len(inorder) == 0 {
		if tree.Min() != nil || tree.Max() != nil {
			return fmt.Errorf("%w: empty tree with endpoints", ErrListViolation)
		}
		return nil
	}

	aux := tree.Min()
	for i, node := range inorder {
		if aux != node {
			return fmt.Errorf("%w: next mismatch at %d", ErrListViolation, i)
		}
		aux = tree.Next(aux)
	}
	if aux != nil {
		return fmt.Errorf("%w: next after the maximum", ErrListViolation)
	}

	aux = tree.Max()
	for i := len(inorder) - 1; i >= 0; i-- {
		if aux != inorder[i] {
			return fmt.Errorf("%w: prev mismatch at %d", ErrListViolation, i)
		}
		aux = tree.Prev(aux)
	}
	if aux != nil {
		return fmt.Errorf("%w: prev before the minimum", ErrListViolation)
	}
	return nil
}

// Validate runs all the validations and combines the violations.
func Validate[T any](tree LLRBTree[T], cmp LLRBComparator[T]) error {
	var merr error
	if isRed(tree.Root()) {
		merr = multierr.Append(merr, ErrRootColorViolation)
	}
	merr = multierr.Append(merr, RedViolationValidate[T](tree))
	merr = multierr.Append(merr, BlackViolationValidate[T](tree))
	merr = multierr.Append(merr, LeanViolationValidate[T](tree))
	merr = multierr.Append(merr, OrderViolationValidate[T](tree, cmp))
	merr = multierr.Append(merr, ListViolationValidate[T](tree))

	n := int64(0)
	tree.Foreach(func(_ int64, _ *LLRBNode[T]) bool {
		n++
		return true
	})
	if n != tree.Len() {
		merr = multierr.Append(merr, fmt.Errorf("%w: counted %d, recorded %d", ErrLenViolation, n, tree.Len()))
	}
	return merr
}

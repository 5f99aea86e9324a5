package tree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func intComparator() LLRBComparator[int] {
	return OrderedComparator[int, int](func(v int) int { return v })
}

func craft(v int, color RBColor, l, r *LLRBNode[int]) *LLRBNode[int] {
	node := NewLLRBNode(v)
	node.color = color
	node.child[Left], node.child[Right] = l, r
	return node
}

func craftedTree(root *LLRBNode[int], count int64) LLRBTree[int] {
	tree := NewLLRBTree[int](intComparator(), WithLLRBNoList[int]()).(*llrbTree[int])
	tree.root = root
	tree.count = count
	return tree
}

func TestLLRBValidate_Violations(t *testing.T) {
	testcases := []struct {
		name     string
		root     func() *LLRBNode[int]
		count    int64
		validate func(tree LLRBTree[int]) error
		expected error
	}{
		{
			name: "red violation",
			root: func() *LLRBNode[int] {
				return craft(3, Black, craft(2, Red, craft(1, Red, nil, nil), nil), nil)
			},
			count:    3,
			validate: RedViolationValidate[int],
			expected: ErrRedViolation,
		},
		{
			name: "black violation",
			root: func() *LLRBNode[int] {
				return craft(2, Black, craft(1, Black, nil, nil), nil)
			},
			count:    2,
			validate: BlackViolationValidate[int],
			expected: ErrBlackViolation,
		},
		{
			name: "lean violation",
			root: func() *LLRBNode[int] {
				return craft(1, Black, nil, craft(2, Red, nil, nil))
			},
			count:    2,
			validate: LeanViolationValidate[int],
			expected: ErrLeanViolation,
		},
		{
			name: "order violation",
			root: func() *LLRBNode[int] {
				return craft(2, Black, craft(3, Red, nil, nil), nil)
			},
			count: 2,
			validate: func(tree LLRBTree[int]) error {
				return OrderViolationValidate[int](tree, intComparator())
			},
			expected: ErrOrderViolation,
		},
		{
			name: "duplicate keys",
			root: func() *LLRBNode[int] {
				return craft(2, Black, craft(2, Red, nil, nil), nil)
			},
			count: 2,
			validate: func(tree LLRBTree[int]) error {
				return OrderViolationValidate[int](tree, intComparator())
			},
			expected: ErrOrderViolation,
		},
		{
			name: "root color violation",
			root: func() *LLRBNode[int] {
				return craft(1, Red, nil, nil)
			},
			count: 1,
			validate: func(tree LLRBTree[int]) error {
				return Validate[int](tree, intComparator())
			},
			expected: ErrRootColorViolation,
		},
		{
			name: "length violation",
			root: func() *LLRBNode[int] {
				return craft(1, Black, nil, nil)
			},
			count: 2,
			validate: func(tree LLRBTree[int]) error {
				return Validate[int](tree, intComparator())
			},
			expected: ErrLenViolation,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := craftedTree(tc.root(), tc.count)
			err := tc.validate(tree)
			require.Error(tt, err)
			require.True(tt, errors.Is(err, tc.expected))
		})
	}
}

func TestLLRBValidate_Combined(t *testing.T) {
	// Red root with a red right child: three rules broken at once.
	tree := craftedTree(craft(1, Red, nil, craft(2, Red, nil, nil)), 2)
	err := Validate[int](tree, intComparator())
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	require.ErrorIs(t, err, ErrRootColorViolation)
	require.ErrorIs(t, err, ErrRedViolation)
	require.ErrorIs(t, err, ErrLeanViolation)
	require.NotErrorIs(t, err, ErrBlackViolation)
}

func TestLLRBValidate_ListViolation(t *testing.T) {
	tree := NewLLRBTree[int](intComparator())
	nodes := make([]*LLRBNode[int], 0, 8)
	for v := 0; v < 8; v++ {
		node := NewLLRBNode(v)
		nodes = append(nodes, node)
		tree.InsertOrReplace(node)
	}
	require.NoError(t, ListViolationValidate[int](tree))

	// Skip 4 forwards only.
	nodes[3].neigh[Right] = nodes[5]
	err := ListViolationValidate[int](tree)
	require.ErrorIs(t, err, ErrListViolation)
	nodes[3].neigh[Right] = nodes[4]
	require.NoError(t, ListViolationValidate[int](tree))

	// Skip 4 backwards only.
	nodes[5].neigh[Left] = nodes[3]
	err = ListViolationValidate[int](tree)
	require.ErrorIs(t, err, ErrListViolation)
	nodes[5].neigh[Left] = nodes[4]

	require.NoError(t, Validate[int](tree, intComparator()))
}

func TestLLRBValidate_Empty(t *testing.T) {
	for _, opts := range [][]LLRBTreeOpt[int]{nil, {WithLLRBNoList[int]()}} {
		tree := NewLLRBTree[int](intComparator(), opts...)
		require.NoError(t, Validate[int](tree, intComparator()))
	}
}

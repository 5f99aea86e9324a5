package tree

import (
	"unsafe"

	"github.com/benz9527/llrb/lib/infra"
)

// PointerComparator orders the nodes by their memory address, for
// intrusive uses without a natural key.
// The Go heap does not move objects, so the order is stable. It is only
// meaningful (rather than arbitrary) when the nodes come from the same
// backing storage, e.g. an Arena.
func PointerComparator[T any]() LLRBComparator[T] {
	return func(a, b *LLRBNode[T], _ LLRBTree[T]) int {
		return infra.Compare[uintptr](
			uintptr(unsafe.Pointer(a)),
			uintptr(unsafe.Pointer(b)),
		)
	}
}

// OrderedComparator orders the nodes by a key extracted from the value.
func OrderedComparator[K infra.OrderedKey, T any](key func(v T) K) LLRBComparator[T] {
	return func(a, b *LLRBNode[T], _ LLRBTree[T]) int {
		return infra.Compare[K](key(a.Value), key(b.Value))
	}
}

// ReverseComparator turns the order of cmp around.
func ReverseComparator[T any](cmp LLRBComparator[T]) LLRBComparator[T] {
	return func(a, b *LLRBNode[T], tree LLRBTree[T]) int {
		return cmp(b, a, tree)
	}
}

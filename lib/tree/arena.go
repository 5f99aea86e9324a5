package tree

// References:
// https://github.com/ortuman/nuke
// https://github.com/dgraph-io/badger/blob/master/skl/arena.go

// arenaChunk is a fixed capacity slab, it is never reallocated so that the
// handed out pointers stay valid and keep their address order.
type arenaChunk[R any] struct {
	objs   []R
	offset int
}

func (chunk *arenaChunk[R]) available() int {
	return len(chunk.objs) - chunk.offset
}

func (chunk *arenaChunk[R]) allocate() (*R, bool) {
	if chunk.available() <= 0 {
		return nil, false
	}
	obj := &chunk.objs[chunk.offset]
	chunk.offset++
	return obj, true
}

func (chunk *arenaChunk[R]) reset() {
	clear(chunk.objs[:chunk.offset])
	chunk.offset = 0
}

// Arena is an auto growth slab allocator of records, e.g. records that
// embed LLRBNode. The records of an Arena are ordered by the
// PointerComparator in allocation order within a chunk.
// It is not thread safe.
type Arena[R any] struct {
	chunks   []*arenaChunk[R]
	recycled []*R
	capPerCk int
}

func (arena *Arena[R]) Chunks() int {
	return len(arena.chunks)
}

// Len is the number of live records (allocated and not recycled).
func (arena *Arena[R]) Len() int {
	l := 0
	for _, chunk := range arena.chunks {
		l += chunk.offset
	}
	return l - len(arena.recycled)
}

// Allocate returns a zeroed record. Recycled records are reused first.
func (arena *Arena[R]) Allocate() *R {
	if rl := len(arena.recycled); rl > 0 {
		obj := arena.recycled[rl-1]
		arena.recycled[rl-1] = nil
		arena.recycled = arena.recycled[:rl-1]
		var zero R
		*obj = zero
		return obj
	}
	if /* tail */ l := len(arena.chunks); l > 0 {
		if obj, ok := arena.chunks[l-1].allocate(); ok {
			return obj
		}
	}
	chunk := &arenaChunk[R]{
		objs: make([]R, arena.capPerCk),
	}
	arena.chunks = append(arena.chunks, chunk)
	obj, _ := chunk.allocate()
	return obj
}

// Recycle hands the records back for reuse. They must not be linked
// in any tree any more.
func (arena *Arena[R]) Recycle(objs ...*R) {
	for _, obj := range objs {
		if obj != nil {
			arena.recycled = append(arena.recycled, obj)
		}
	}
}

// Reset invalidates every record handed out so far and keeps the first
// chunk for reuse.
func (arena *Arena[R]) Reset() {
	clear(arena.recycled)
	arena.recycled = arena.recycled[:0]
	if len(arena.chunks) == 0 {
		return
	}
	arena.chunks[0].reset()
	clear(arena.chunks[1:])
	arena.chunks = arena.chunks[:1]
}

func NewArena[R any](capPerChunk int) *Arena[R] {
	if capPerChunk <= 0 {
		capPerChunk = 1024
	}
	return &Arena[R]{
		chunks:   make([]*arenaChunk[R], 0, 32),
		recycled: make([]*R, 0, 64),
		capPerCk: capPerChunk,
	}
}

// NewNodeArena allocates bare nodes.
func NewNodeArena[T any](capPerChunk int) *Arena[LLRBNode[T]] {
	return NewArena[LLRBNode[T]](capPerChunk)
}

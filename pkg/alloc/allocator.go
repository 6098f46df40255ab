// Package alloc implements the allocator engine: allocate, free and locate
// over a pkg/tree.Tree, following the recursive split/merge contract of
// the buddy allocator spec exactly (leftmost-fit, eager coalescing, no
// partial mutation on failure).
package alloc

import "buddyd/pkg/tree"

// ErrFail is returned by Allocate when no sufficient free region exists,
// and by Free when ref does not identify a single ALLOCATED leaf.
// It mirrors the -1 sentinel of the source contract; callers that need a
// richer taxonomy (SizeTooLarge vs Fragmentation vs InvalidRef) classify
// ErrFail themselves, since the core cannot distinguish these cases any
// more precisely than the original -1 return could.
type ErrFail struct {
	Op string
}

func (e *ErrFail) Error() string { return "alloc: " + e.Op + " failed" }

// Engine wraps a tree.Tree with allocate/free/locate.
type Engine struct {
	t *tree.Tree
}

// New wraps t in an Engine.
func New(t *tree.Tree) *Engine {
	return &Engine{t: t}
}

// Allocate finds the lowest-offset FREE leaf whose size is the smallest
// power-of-two >= max(size, LeafSize) that fits, splitting parents as
// needed, marks it ALLOCATED, and returns its base offset. Returns
// ErrFail if size exceeds the pool or no sufficiently large free block can
// be placed (fragmentation).
func (e *Engine) Allocate(size int) (int, error) {
	if size <= 0 {
		size = 1
	}
	if size < e.t.LeafSize() {
		size = e.t.LeafSize()
	}
	off, ok := e.allocate(size, e.t.Root(), e.t.MemSize())
	if !ok {
		return -1, &ErrFail{Op: "allocate"}
	}
	return off, nil
}

// allocate implements spec §4.C.1's four-case recursion verbatim.
func (e *Engine) allocate(size, node, available int) (int, bool) {
	if size > available {
		return -1, false
	}
	switch e.t.State(node) {
	case tree.Free:
		half := available / 2
		if size <= half && half >= e.t.LeafSize() {
			if err := e.t.Split(node); err != nil {
				return -1, false
			}
			// The left child always succeeds once split, since size <= half
			// was just verified against the very capacity the left child
			// now has.
			off, ok := e.allocate(size, e.t.Left(node), half)
			if !ok {
				// Unreachable under the precondition above, but keep the
				// failure path inert (no further state change) per spec §7.
				return -1, false
			}
			return off, true
		}
		// Cannot or need not split further: take this leaf whole.
		e.markAllocated(node)
		return e.t.BaseOffset(node), true
	case tree.Allocated:
		return -1, false
	case tree.Parent:
		half := available / 2
		if off, ok := e.allocate(size, e.t.Left(node), half); ok {
			return off, true
		}
		// BaseOffset is already an absolute pool offset, so the right
		// subtree's result needs no adjustment by half.
		if off, ok := e.allocate(size, e.t.Right(node), half); ok {
			return off, true
		}
		return -1, false
	default:
		return -1, false
	}
}

// markAllocated is the one place a FREE leaf becomes ALLOCATED; it is the
// engine's only call to tree.Tree.MarkAllocated, so the engine remains the
// sole writer of allocation state.
func (e *Engine) markAllocated(node int) {
	e.t.MarkAllocated(node)
}

// Free looks up ref via Locate; if it names an ALLOCATED leaf, frees and
// coalesces it and returns nil. Otherwise returns ErrFail.
func (e *Engine) Free(ref int) error {
	node, ok := e.Locate(ref)
	if !ok || e.t.State(node) != tree.Allocated {
		return &ErrFail{Op: "free"}
	}
	e.t.FreeAndMerge(node)
	return nil
}

// Locate descends from the root choosing children by the high-order bits
// of ref/LeafSize, stopping at the first non-PARENT node reached, per
// spec §4.C.3. Returns (0, false) if ref is out of range.
func (e *Engine) Locate(ref int) (int, bool) {
	if ref < 0 || ref >= e.t.MemSize() {
		return 0, false
	}
	idx := ref / e.t.LeafSize()
	node := e.t.Root()
	for n := e.t.Depth() - 1; n >= 0; n-- {
		if e.t.State(node) != tree.Parent {
			break
		}
		bit := (idx >> uint(n)) & 1
		if bit == 0 {
			node = e.t.Left(node)
		} else {
			node = e.t.Right(node)
		}
	}
	return node, true
}

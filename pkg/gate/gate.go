// Package gate implements the access gate: bounds-checked write/read over
// a pkg/pool.Pool, gated by pkg/alloc.Engine's locate so that a range is
// only touched when it lies entirely within one ALLOCATED leaf.
package gate

import (
	"bytes"
	"fmt"

	"buddyd/pkg/alloc"
	"buddyd/pkg/pool"
	"buddyd/pkg/tree"
)

// ErrCrossBoundary is returned when a write/read range's two endpoints map
// to different leaves, or either endpoint is out of range, or the leaf is
// not ALLOCATED.
var ErrCrossBoundary = fmt.Errorf("gate: access crosses a leaf boundary or targets an unallocated region")

// Gate couples a Pool with the Engine/Tree used to validate accesses.
type Gate struct {
	pool *pool.Pool
	eng  *alloc.Engine
	t    *tree.Tree
}

// New builds a Gate over p, validating accesses against t via eng.
func New(p *pool.Pool, eng *alloc.Engine, t *tree.Tree) *Gate {
	return &Gate{pool: p, eng: eng, t: t}
}

// sameAllocatedLeaf locates both endpoints of [ref, ref+length) and
// confirms they name the same ALLOCATED leaf. This is the endpoint-only
// check of spec §4.D: for a power-of-two leaf layout, identical endpoint
// leaves imply the whole range is inside that leaf.
func (g *Gate) sameAllocatedLeaf(ref, end int) (ok bool) {
	n1, ok1 := g.eng.Locate(ref)
	n2, ok2 := g.eng.Locate(end)
	if !ok1 || !ok2 || n1 != n2 {
		return false
	}
	return g.t.State(n1) == tree.Allocated
}

// Write treats buf as a zero-terminated byte sequence: the logical length
// L is the index of the first zero byte in buf (or len(buf) if none is
// present). It writes exactly L bytes at ref and returns L, or returns
// ErrCrossBoundary (with nothing written) if [ref, ref+L) does not lie
// entirely inside one ALLOCATED leaf.
func (g *Gate) Write(ref int, buf []byte) (int, error) {
	l := bytes.IndexByte(buf, 0)
	if l < 0 {
		l = len(buf)
	}
	if l == 0 {
		// A zero-length write still has to target a valid allocation: use
		// ref itself as both endpoints.
		if !g.sameAllocatedLeaf(ref, ref) {
			return -1, ErrCrossBoundary
		}
		return 0, nil
	}
	end := ref + l - 1
	if !g.sameAllocatedLeaf(ref, end) {
		return -1, ErrCrossBoundary
	}
	if err := g.pool.CopyIn(ref, buf[:l]); err != nil {
		return -1, err
	}
	return l, nil
}

// WriteN writes exactly len(buf) bytes at ref, ignoring any zero bytes buf
// may contain. It is the length-bearing escape hatch spec §9 allows for
// callers who need to write data containing embedded zeros, without
// changing WRITE's existing zero-terminator semantics.
func (g *Gate) WriteN(ref int, buf []byte) (int, error) {
	if len(buf) == 0 {
		if !g.sameAllocatedLeaf(ref, ref) {
			return -1, ErrCrossBoundary
		}
		return 0, nil
	}
	end := ref + len(buf) - 1
	if !g.sameAllocatedLeaf(ref, end) {
		return -1, ErrCrossBoundary
	}
	if err := g.pool.CopyIn(ref, buf); err != nil {
		return -1, err
	}
	return len(buf), nil
}

// Read returns size bytes starting at ref, or ErrCrossBoundary (with no
// data) if [ref, ref+size) does not lie entirely inside one ALLOCATED leaf.
func (g *Gate) Read(ref, size int) ([]byte, error) {
	if size <= 0 {
		if !g.sameAllocatedLeaf(ref, ref) {
			return nil, ErrCrossBoundary
		}
		return []byte{}, nil
	}
	end := ref + size - 1
	if !g.sameAllocatedLeaf(ref, end) {
		return nil, ErrCrossBoundary
	}
	return g.pool.CopyOut(ref, size)
}

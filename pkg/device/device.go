// Package device owns the lifecycle of a buddy allocator instance: it
// bundles one pool, one tree and the engine/gate over them behind a single
// value, per the spec's "pool + tree form process-wide state bound to an
// init/teardown pair" design note.
package device

import (
	"fmt"
	"sync"

	"buddyd/pkg/alloc"
	"buddyd/pkg/gate"
	"buddyd/pkg/pool"
	"buddyd/pkg/tree"
)

// Params are the pool parameters a client can query per spec §6.
type Params struct {
	Depth     int
	LeafSize  int
	NumLeaves int
	MemSize   int
}

// Device is one buddy allocator instance: a byte pool and the buddy tree
// that governs it. All mutating operations are serialized by mu — not
// because the core needs it (spec §5 assumes single-request-at-a-time),
// but because this repo's two carriers (HTTP, NATS) run on separate
// goroutines and must not be allowed to interleave into the tree. This is
// exactly the "single mutex covering both the tree and pool" spec §5
// sanctions for a parallel-carrier deployment; it changes no other
// semantics.
type Device struct {
	mu   sync.Mutex
	pool *pool.Pool
	tree *tree.Tree
	eng  *alloc.Engine
	gate *gate.Gate
}

// New initializes a Device for the given tree depth: a zeroed pool of
// exactly 2^depth * leafSize bytes, and a tree with a single FREE root
// covering it whole. leafSize is derived here as 1<<depth per spec §3 and
// passed explicitly to tree.New.
func New(depth int) (*Device, error) {
	if depth < 1 {
		return nil, fmt.Errorf("device: depth must be >= 1, got %d", depth)
	}
	leafSize := 1 << uint(depth)
	t, err := tree.New(depth, leafSize)
	if err != nil {
		return nil, err
	}
	p, err := pool.New(t.MemSize())
	if err != nil {
		return nil, err
	}
	eng := alloc.New(t)
	g := gate.New(p, eng, t)
	return &Device{pool: p, tree: t, eng: eng, gate: g}, nil
}

// Close releases the device's pool and tree. Node release is implicitly
// post-order since the backing array is dropped as a whole; there are no
// individually owned nodes to walk and free.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pool = nil
	d.tree = nil
	d.eng = nil
	d.gate = nil
	return nil
}

// Params returns the pool parameters of spec §6.
func (d *Device) Params() Params {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Params{
		Depth:     d.tree.Depth(),
		LeafSize:  d.tree.LeafSize(),
		NumLeaves: d.tree.NumLeaves(),
		MemSize:   d.tree.MemSize(),
	}
}

// Alloc requests a block of at least size bytes, returning its base offset
// or an error if no sufficient free region exists.
func (d *Device) Alloc(size int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eng.Allocate(size)
}

// Free releases the block at ref.
func (d *Device) Free(ref int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eng.Free(ref)
}

// Write copies the zero-terminated contents of buf into the block at ref.
func (d *Device) Write(ref int, buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gate.Write(ref, buf)
}

// WriteN writes exactly len(buf) bytes at ref, bypassing the zero-terminator
// rule of Write. See pkg/gate.Gate.WriteN.
func (d *Device) WriteN(ref int, buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gate.WriteN(ref, buf)
}

// Read returns size bytes from the block at ref.
func (d *Device) Read(ref, size int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gate.Read(ref, size)
}

// Stats is a read-only snapshot of pool utilization, used by the stats
// reporter and metrics gauge. It does not go through the Attach Gate —
// observing state is not "attaching a client" — but it does take the same
// mutex as every mutating call, so a snapshot never straddles a request.
type Stats struct {
	AllocatedBytes int
	FreeBytes      int
	LargestFree    int
}

func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	var s Stats
	var walk func(node, available int)
	walk = func(node, available int) {
		switch d.tree.State(node) {
		case tree.Allocated:
			s.AllocatedBytes += available
		case tree.Free:
			s.FreeBytes += available
			if available > s.LargestFree {
				s.LargestFree = available
			}
		case tree.Parent:
			half := available / 2
			walk(d.tree.Left(node), half)
			walk(d.tree.Right(node), half)
		}
	}
	walk(d.tree.Root(), d.tree.MemSize())
	return s
}

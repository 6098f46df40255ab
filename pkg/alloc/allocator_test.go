package alloc

import (
	"testing"

	"buddyd/pkg/tree"
)

func newEngine(t *testing.T, depth, leafSize int) *Engine {
	t.Helper()
	tr, err := tree.New(depth, leafSize)
	if err != nil {
		t.Fatalf("tree.New: %v", err)
	}
	return New(tr)
}

// Scenario 2 (spec §8): sequential fill then misc, DEPTH=4, LEAF_SIZE=16,
// MEM_SIZE=256.
func TestAllocate_SequentialFillThenFragmentation(t *testing.T) {
	e := newEngine(t, 4, 16)

	want := []struct {
		size, ref int
	}{
		{64, 0},
		{32, 64},
		{32, 96},
		{64, 128},
		{16, 192},
		{16, 208},
	}
	for _, w := range want {
		ref, err := e.Allocate(w.size)
		if err != nil {
			t.Fatalf("allocate(%d): unexpected error: %v", w.size, err)
		}
		if ref != w.ref {
			t.Fatalf("allocate(%d) = %d, want %d", w.size, ref, w.ref)
		}
	}

	// 224..255 is a 32-byte free region, not a 64-byte buddy: fails.
	if _, err := e.Allocate(64); err == nil {
		t.Fatalf("allocate(64) should fail due to fragmentation")
	}

	if err := e.Free(128); err != nil {
		t.Fatalf("free(128): %v", err)
	}
	ref, err := e.Allocate(64)
	if err != nil {
		t.Fatalf("allocate(64) after free: %v", err)
	}
	if ref != 128 {
		t.Fatalf("allocate(64) after free = %d, want 128", ref)
	}
}

// Scenario 3 (spec §8): internal fragmentation.
func TestAllocate_InternalFragmentation(t *testing.T) {
	e := newEngine(t, 4, 16)

	ref, err := e.Allocate(256/2 + 1) // exceeds half the pool
	if err != nil {
		t.Fatalf("allocate(MEM_SIZE/2+1): %v", err)
	}
	if ref != 0 {
		t.Fatalf("allocate(MEM_SIZE/2+1) = %d, want 0 (whole pool as one block)", ref)
	}

	if _, err := e.Allocate(1); err == nil {
		t.Fatalf("allocate(1) should fail, pool is fully allocated")
	}

	if err := e.Free(0); err != nil {
		t.Fatalf("free(0): %v", err)
	}

	if ref, err := e.Allocate(1); err != nil || ref != 0 {
		t.Fatalf("allocate(1) after free(0) = (%d, %v), want (0, nil)", ref, err)
	}
}

// Scenario 4 (spec §8): bad free.
func TestFree_RejectsUnallocatedOrDoubleFree(t *testing.T) {
	e := newEngine(t, 4, 16)

	ref, err := e.Allocate(32)
	if err != nil || ref != 0 {
		t.Fatalf("allocate(32) = (%d, %v), want (0, nil)", ref, err)
	}

	if err := e.Free(128); err == nil {
		t.Fatalf("free(128) should fail: not an ALLOCATED leaf")
	}

	if err := e.Free(0); err != nil {
		t.Fatalf("free(0): %v", err)
	}
	if err := e.Free(0); err == nil {
		t.Fatalf("double free(0) should fail")
	}
}

func TestAllocate_SizeExceedsPool(t *testing.T) {
	e := newEngine(t, 4, 16)
	if _, err := e.Allocate(257); err == nil {
		t.Fatalf("allocate(257) should fail, pool is only 256 bytes")
	}
}

func TestAllocate_RoundsUpToLeafSize(t *testing.T) {
	e := newEngine(t, 4, 16)
	ref, err := e.Allocate(1)
	if err != nil {
		t.Fatalf("allocate(1): %v", err)
	}
	if ref != 0 {
		t.Fatalf("allocate(1) = %d, want 0", ref)
	}
	// A second allocate(1) should land at the next leaf, 16, confirming
	// the first grant was exactly LeafSize bytes, not larger.
	ref2, err := e.Allocate(1)
	if err != nil {
		t.Fatalf("allocate(1) #2: %v", err)
	}
	if ref2 != 16 {
		t.Fatalf("allocate(1) #2 = %d, want 16", ref2)
	}
}

func TestLocate_OutOfRange(t *testing.T) {
	e := newEngine(t, 4, 16)
	if _, ok := e.Locate(-1); ok {
		t.Fatalf("Locate(-1) should report out of range")
	}
	if _, ok := e.Locate(256); ok {
		t.Fatalf("Locate(256) should report out of range (MEM_SIZE is exclusive upper bound)")
	}
}

// Scenario 6 (spec §8): after scenario 2's allocations plus freeing
// everything, the tree returns to a single FREE root.
func TestFreeAll_CoalescesToSingleRoot(t *testing.T) {
	e := newEngine(t, 4, 16)

	for _, size := range []int{64, 32, 32, 64, 16, 16} {
		if _, err := e.Allocate(size); err != nil {
			t.Fatalf("allocate(%d): %v", size, err)
		}
	}

	for _, ref := range []int{0, 64, 96, 128, 192, 208} {
		if err := e.Free(ref); err != nil {
			t.Fatalf("free(%d): %v", ref, err)
		}
	}

	if e.t.State(e.t.Root()) != tree.Free {
		t.Fatalf("root should be FREE after freeing everything, got %s", e.t.State(e.t.Root()))
	}
}

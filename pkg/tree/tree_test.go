package tree

import "testing"

func TestNew_SingleFreeRoot(t *testing.T) {
	tr, err := New(4, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.State(tr.Root()) != Free {
		t.Fatalf("root should start FREE, got %s", tr.State(tr.Root()))
	}
	if tr.MemSize() != 256 {
		t.Fatalf("MemSize = %d, want 256", tr.MemSize())
	}
	if tr.NumLeaves() != 16 {
		t.Fatalf("NumLeaves = %d, want 16", tr.NumLeaves())
	}
}

func TestSplit_CreatesTwoFreeChildren(t *testing.T) {
	tr, _ := New(4, 16)
	root := tr.Root()
	if err := tr.Split(root); err != nil {
		t.Fatalf("Split: %v", err)
	}
	if tr.State(root) != Parent {
		t.Fatalf("root should be PARENT after split, got %s", tr.State(root))
	}
	l, r := tr.Left(root), tr.Right(root)
	if tr.State(l) != Free || tr.State(r) != Free {
		t.Fatalf("children should be FREE after split, got %s, %s", tr.State(l), tr.State(r))
	}
	if tr.Size(l) != tr.MemSize()/2 || tr.Size(r) != tr.MemSize()/2 {
		t.Fatalf("children should each cover half the parent's range")
	}
	if tr.BaseOffset(l) != 0 || tr.BaseOffset(r) != tr.MemSize()/2 {
		t.Fatalf("left child base offset should be 0, right should be half of MemSize")
	}
}

func TestSplit_RejectsNonFree(t *testing.T) {
	tr, _ := New(4, 16)
	root := tr.Root()
	tr.MarkAllocated(root)
	if err := tr.Split(root); err == nil {
		t.Fatalf("expected error splitting an ALLOCATED node")
	}
}

func TestFreeAndMerge_CoalescesUpward(t *testing.T) {
	tr, _ := New(4, 16)
	root := tr.Root()
	_ = tr.Split(root)
	l, r := tr.Left(root), tr.Right(root)
	_ = tr.Split(l)
	ll, lr := tr.Left(l), tr.Right(l)

	tr.MarkAllocated(ll)
	tr.MarkAllocated(lr)
	tr.MarkAllocated(r)

	// Freeing ll alone must not merge (lr is still ALLOCATED).
	tr.FreeAndMerge(ll)
	if tr.State(l) != Parent {
		t.Fatalf("l should still be PARENT, lr is ALLOCATED")
	}

	// Freeing lr should now merge l back into a single FREE leaf, but not
	// merge further since r is still ALLOCATED.
	tr.FreeAndMerge(lr)
	if tr.State(l) != Free {
		t.Fatalf("l should have merged back to FREE, got %s", tr.State(l))
	}
	if tr.State(root) != Parent {
		t.Fatalf("root should still be PARENT since r is ALLOCATED")
	}

	// Freeing r should now merge everything back to a single FREE root.
	tr.FreeAndMerge(r)
	if tr.State(root) != Free {
		t.Fatalf("root should have merged back to FREE, got %s", tr.State(root))
	}
}

func TestBaseOffset_ArrayIndexedLayout(t *testing.T) {
	tr, _ := New(2, 16) // 4 leaves of 16 bytes each, MemSize=64
	root := tr.Root()
	_ = tr.Split(root)
	l, r := tr.Left(root), tr.Right(root)
	_ = tr.Split(l)
	_ = tr.Split(r)

	leaves := []int{tr.Left(l), tr.Right(l), tr.Left(r), tr.Right(r)}
	wantOffsets := []int{0, 16, 32, 48}
	for i, leaf := range leaves {
		if got := tr.BaseOffset(leaf); got != wantOffsets[i] {
			t.Fatalf("leaf %d: BaseOffset = %d, want %d", i, got, wantOffsets[i])
		}
	}
}

package pool

import "testing"

func TestNew_ZeroFilled(t *testing.T) {
	p, err := New(64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := p.CopyOut(0, 64)
	if err != nil {
		t.Fatalf("CopyOut: %v", err)
	}
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %d, want 0", i, v)
		}
	}
}

func TestCopyIn_OutOfRange(t *testing.T) {
	p, _ := New(16)
	if err := p.CopyIn(10, []byte("too long for remaining space")); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestCopyIn_RoundTrip(t *testing.T) {
	p, _ := New(16)
	if err := p.CopyIn(4, []byte("hi")); err != nil {
		t.Fatalf("CopyIn: %v", err)
	}
	b, err := p.CopyOut(4, 2)
	if err != nil {
		t.Fatalf("CopyOut: %v", err)
	}
	if string(b) != "hi" {
		t.Fatalf("CopyOut = %q, want %q", b, "hi")
	}
}

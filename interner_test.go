package blaze

import "testing"

func TestInterner_InternDeduplicates(t *testing.T) {
	in := NewInterner(func(s string) string { return s })

	h1 := in.Intern("quick")
	h2 := in.Intern("brown")
	h3 := in.Intern("quick")

	if h1 != h3 {
		t.Errorf("interning the same value twice should return the same handle, got %d and %d", h1, h3)
	}
	if h1 == h2 {
		t.Error("distinct values should get distinct handles")
	}
	if in.Len() != 2 {
		t.Errorf("Len() = %d, want 2", in.Len())
	}
}

func TestInterner_Get(t *testing.T) {
	in := NewInterner(func(s string) string { return s })
	h := in.Intern("fox")
	if got := in.Get(h); got != "fox" {
		t.Errorf("Get(%d) = %q, want %q", h, got, "fox")
	}
}

func TestInterner_NonComparableValue(t *testing.T) {
	// Phrase is a slice, so it can't use a `comparable` map key directly;
	// Interner's keyFn-based design is what makes this work.
	in := NewInterner(phraseKey)

	p1 := Phrase{"machine", "learning"}
	p2 := Phrase{"machine", "learning"}
	p3 := Phrase{"deep", "learning"}

	h1 := in.Intern(p1)
	h2 := in.Intern(p2)
	h3 := in.Intern(p3)

	if h1 != h2 {
		t.Error("equal phrases should intern to the same handle")
	}
	if h1 == h3 {
		t.Error("different phrases should intern to different handles")
	}
}

func TestInterner_InsertionOrderHandles(t *testing.T) {
	in := NewInterner(func(s string) string { return s })
	h0 := in.Intern("a")
	h1 := in.Intern("b")
	h2 := in.Intern("c")

	if h0 != 0 || h1 != 1 || h2 != 2 {
		t.Errorf("expected dense insertion-ordered handles 0,1,2, got %d,%d,%d", h0, h1, h2)
	}
}

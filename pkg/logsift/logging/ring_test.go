package logging

import "testing"

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing(3)
	for _, m := range []string{"A", "B", "C", "D", "E"} {
		r.Add(Entry{Message: m})
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	want := []string{"C", "D", "E"}
	for i, e := range r.Entries() {
		if e.Message != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Message, want[i])
		}
	}
}

func TestRingDefaultSize(t *testing.T) {
	r := NewRing(0)
	if len(r.buf) != DefaultRetain {
		t.Errorf("buffer size = %d, want %d", len(r.buf), DefaultRetain)
	}
}

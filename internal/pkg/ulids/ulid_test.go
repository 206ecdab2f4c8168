package ulids

import "testing"

func TestMonotonic_StrictlyIncreasing(t *testing.T) {
	next := Monotonic()

	prev := next()
	for i := 0; i < 1000; i++ {
		id := next()
		if len(id) != 26 {
			t.Fatalf("expected 26-char ULID, got %q", id)
		}
		if id <= prev {
			t.Fatalf("ULIDs must increase: %s then %s", prev, id)
		}
		prev = id
	}
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := New()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ULID %s", id)
		}
		seen[id] = struct{}{}
	}
}

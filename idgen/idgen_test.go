package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{8, 12, 16, 24} {
		gen := NanoID(length)
		id := gen()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	gen := NanoID(100)
	id := gen()
	for _, c := range id {
		if !strings.ContainsRune(base36Alphabet, c) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestNanoID_Uniqueness(t *testing.T) {
	gen := NanoID(12)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("NanoID: duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7_Format(t *testing.T) {
	gen := UUIDv7()
	id := gen()
	// UUID format: 8-4-4-4-12
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("obs_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "obs_") {
		t.Fatalf("Prefixed: expected prefix 'obs_', got %q", id)
	}
	if len(id) != 4+8 {
		t.Fatalf("Prefixed: expected length 12, got %d", len(id))
	}
}

func TestBase36Encode(t *testing.T) {
	cases := map[int64]string{
		0:   "0",
		35:  "z",
		36:  "10",
		71:  "1z",
		-10: "-a",
	}
	for in, want := range cases {
		if got := base36Encode(in); got != want {
			t.Fatalf("base36Encode(%d): got %q, want %q", in, got, want)
		}
	}
}

func TestBase36Random_Length(t *testing.T) {
	gen := Base36Random(10)
	id := gen()
	if len(id) != 10 {
		t.Fatalf("Base36Random(10): got length %d for %q", len(id), id)
	}
	for _, c := range id {
		if !strings.ContainsRune(base36Alphabet, c) {
			t.Fatalf("Base36Random: unexpected character %q in %q", c, id)
		}
	}
}

func TestBase36Random_Uniqueness(t *testing.T) {
	gen := Base36Random(16)
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("Base36Random: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestBase36Timestamp_Shape(t *testing.T) {
	gen := Base36Timestamp()
	id := gen()
	if id == "" {
		t.Fatal("Base36Timestamp: got empty string")
	}
	for _, c := range id {
		if !strings.ContainsRune(base36Alphabet, c) {
			t.Fatalf("Base36Timestamp: unexpected character %q in %q", c, id)
		}
	}
}

func TestBase36Timestamp_Nondecreasing(t *testing.T) {
	gen := Base36Timestamp()
	a := gen()
	b := gen()
	if len(b) < len(a) {
		t.Fatalf("Base36Timestamp: later id %q shorter than earlier %q", b, a)
	}
	if len(b) == len(a) && b < a {
		t.Fatalf("Base36Timestamp: later id %q sorts before earlier %q", b, a)
	}
}

func TestJoined(t *testing.T) {
	gen := Joined("-", func() string { return "a" }, func() string { return "b" }, func() string { return "c" })
	if got := gen(); got != "a-b-c" {
		t.Fatalf("Joined: got %q", got)
	}
}

func TestJoined_ObservationIDShape(t *testing.T) {
	gen := Prefixed("obs_", Joined("_", Base36Timestamp(), Base36Random(12)))
	id := gen()
	if !strings.HasPrefix(id, "obs_") {
		t.Fatalf("expected obs_ prefix, got %q", id)
	}
	rest := strings.TrimPrefix(id, "obs_")
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("expected timestamp36_random36 shape, got %q", id)
	}
	if len(parts[1]) != 12 {
		t.Fatalf("expected 12-char random component, got %q (%d chars)", parts[1], len(parts[1]))
	}
}

func TestDefault_IsUUIDv7(t *testing.T) {
	id := New()
	// UUIDv7 format: 8-4-4-4-12 = 36 chars
	if len(id) != 36 {
		t.Fatalf("New (UUIDv7 default): expected length 36, got %d for %q", len(id), id)
	}
	// Must be a valid UUID
	if _, err := Parse(id); err != nil {
		t.Fatalf("New: default should produce valid UUIDv7: %v", err)
	}
}

func TestParse_Valid(t *testing.T) {
	gen := UUIDv7()
	original := gen()
	parsed, err := Parse(original)
	if err != nil {
		t.Fatalf("Parse valid UUID: %v", err)
	}
	if parsed != original {
		t.Fatalf("Parse: got %q, want %q", parsed, original)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("not-a-uuid")
	if err == nil {
		t.Fatal("Parse: expected error for invalid UUID")
	}
}

func TestMustParse_Valid(t *testing.T) {
	gen := UUIDv7()
	original := gen()
	result := MustParse(original)
	if result != original {
		t.Fatalf("MustParse: got %q, want %q", result, original)
	}
}

func TestMustParse_Invalid(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("MustParse: expected panic for invalid UUID")
		}
	}()
	MustParse("not-a-uuid")
}

package utils

import "testing"

func TestNewResetCodeFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := NewResetCode()
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != 6 {
			t.Fatalf("length %d: %q", len(code), code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in %q", code)
			}
		}
		seen[code] = true
	}
	// 200 draws from a million values should not all collide.
	if len(seen) < 2 {
		t.Fatal("generator returned a constant code")
	}
}

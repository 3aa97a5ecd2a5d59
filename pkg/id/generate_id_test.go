package id

import (
	"encoding/hex"
	"regexp"
	"testing"
	"time"
)

var reHex32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	// length
	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	// lowercase hex only (no separators/prefixes)
	if !reHex32.MatchString(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	// decodes to exactly 16 bytes
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestLoanNumber_Format(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	got := LoanNumber(now)
	if !regexp.MustCompile(`^PRT202503[A-F0-9]{8}$`).MatchString(got) {
		t.Fatalf("unexpected loan number: %q", got)
	}
}

func TestCaisseCode(t *testing.T) {
	got := CaisseCode(3, "Femme Novissi")
	if got != "FKM03FEMMENOVISSI" {
		t.Fatalf("code = %q, want FKM03FEMMENOVISSI", got)
	}
	// digits and punctuation are dropped
	got = CaisseCode(12, "a-b c1")
	if got != "FKM12ABC" {
		t.Fatalf("code = %q, want FKM12ABC", got)
	}
}

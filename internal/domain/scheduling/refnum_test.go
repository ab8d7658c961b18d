package scheduling

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestNewReferenceNumber(t *testing.T) {
	ref, err := NewReferenceNumber(2024, rand.Reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(ref, "APT-2024-") || !IsReferenceNumber(ref) {
		t.Errorf("unexpected reference %q", ref)
	}
}

func TestNewReferenceNumber_ReaderFailure(t *testing.T) {
	if _, err := NewReferenceNumber(2024, bytes.NewReader(nil)); err == nil {
		t.Error("expected error from exhausted reader")
	}
}

func TestIsReferenceNumber(t *testing.T) {
	for ref, want := range map[string]bool{
		"APT-2024-000042": true,
		"APT-2024-42":     false,
		"apt-2024-000042": false,
		"":                false,
	} {
		if got := IsReferenceNumber(ref); got != want {
			t.Errorf("IsReferenceNumber(%q) = %v", ref, got)
		}
	}
}

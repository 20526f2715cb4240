package crypto

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *BcryptHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher()

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hash == "s3cret" || strings.Contains(hash, "s3cret") {
		t.Fatal("hash must not contain the plaintext")
	}
	if !h.Verify("s3cret", hash) {
		t.Error("expected correct password to verify")
	}
	if h.Verify("S3cret", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestBcryptHasher_SaltedPerCall(t *testing.T) {
	h := newTestHasher()

	first, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if first == second {
		t.Error("expected two hashes of the same password to differ")
	}
	if len(first) != len(second) {
		t.Errorf("expected fixed output length, got %d and %d", len(first), len(second))
	}
	if !h.Verify("same-password", first) || !h.Verify("same-password", second) {
		t.Error("expected both hashes to verify")
	}
}

func TestBcryptHasher_MalformedHashReturnsFalse(t *testing.T) {
	h := newTestHasher()

	for _, stored := range []string{"", "not-a-hash", "$2a$10$short", "$2a$99$" + strings.Repeat("a", 53)} {
		if h.Verify("password", stored) {
			t.Errorf("expected malformed hash %q to fail verification", stored)
		}
	}
}

func TestBcryptHasher_RejectsOverlongPassword(t *testing.T) {
	h := newTestHasher()

	if _, err := h.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("expected error for password longer than 72 bytes")
	}
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewBcryptHasher(1)
	if h.cost != 12 {
		t.Errorf("expected default cost 12, got %d", h.cost)
	}
}

func TestUUIDGenerator_NewID(t *testing.T) {
	g := NewUUIDGenerator()

	a, err := g.NewID()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, _ := g.NewID()

	if a == b {
		t.Error("expected unique ids")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected valid uuid, got %q", a)
	}
}

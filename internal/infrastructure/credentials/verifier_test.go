package credentials

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/userhub/user-service/internal/core/domain"
)

func TestPlaintext(t *testing.T) {
	v := Plaintext{}
	stored, err := v.Hash("secret")
	if err != nil || stored != "secret" {
		t.Fatalf("plaintext hash should be identity, got %q, %v", stored, err)
	}
	if !v.Verify(stored, "secret") {
		t.Fatalf("expected match")
	}
	if v.Verify(stored, "wrong") || v.Verify(stored, "") {
		t.Fatalf("expected mismatch")
	}
}

func TestBcrypt(t *testing.T) {
	v := Bcrypt{Cost: bcrypt.MinCost}
	stored, err := v.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if stored == "secret" {
		t.Fatalf("expected hashed password")
	}
	if !v.Verify(stored, "secret") {
		t.Fatalf("expected match")
	}
	if v.Verify(stored, "wrong") {
		t.Fatalf("expected mismatch")
	}
	if v.Verify("secret", "secret") {
		t.Fatalf("a plaintext value must not verify as a bcrypt hash")
	}
}

func TestBcrypt_RejectsOverlongPassword(t *testing.T) {
	v := Bcrypt{Cost: bcrypt.MinCost}
	if _, err := v.Hash(strings.Repeat("p", MaxBcryptPassword)); err != nil {
		t.Fatalf("72 bytes must hash: %v", err)
	}
	// 40 runes, 80 bytes.
	if _, err := v.Hash(strings.Repeat("é", 40)); !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestNew(t *testing.T) {
	cases := []struct {
		scheme string
		cost   int
		want   string
		ok     bool
	}{
		{"", 0, SchemePlaintext, true},
		{"plaintext", 0, SchemePlaintext, true},
		{"BCRYPT", 0, SchemeBcrypt, true},
		{"bcrypt", 12, SchemeBcrypt, true},
		{"bcrypt", 99, "", false},
		{"argon2", 0, "", false},
	}
	for _, tc := range cases {
		v, err := New(tc.scheme, tc.cost)
		if tc.ok != (err == nil) {
			t.Fatalf("New(%q, %d): unexpected error state: %v", tc.scheme, tc.cost, err)
		}
		if tc.ok && v.Scheme() != tc.want {
			t.Fatalf("New(%q): expected %s, got %s", tc.scheme, tc.want, v.Scheme())
		}
	}
}

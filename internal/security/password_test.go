package security

import "testing"

func TestHashAndMatch(t *testing.T) {
	hash, err := HashPassword("admin12345")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "admin12345" {
		t.Fatalf("hash must not equal the plain text")
	}
	if !PasswordMatches(hash, "admin12345") {
		t.Fatalf("expected password to match")
	}
	if PasswordMatches(hash, "wrong") {
		t.Fatalf("expected mismatch for wrong password")
	}
	if PasswordMatches("not-a-bcrypt-hash", "admin12345") {
		t.Fatalf("malformed hash must not match")
	}
}

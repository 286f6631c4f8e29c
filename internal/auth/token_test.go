package auth

import "testing"

func TestTokenChecker_VerifiesConfiguredToken(t *testing.T) {
	t.Parallel()

	checker, err := NewTokenChecker("super-secret-token")
	if err != nil {
		t.Fatalf("new token checker: %v", err)
	}

	if !checker.Verify("super-secret-token") {
		t.Fatal("expected configured token to verify")
	}
	if checker.Verify("wrong-token") {
		t.Fatal("did not expect wrong token to verify")
	}
	if checker.Verify("") {
		t.Fatal("did not expect empty token to verify")
	}
}

func TestNewTokenChecker_RejectsEmptyToken(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenChecker("   "); err == nil {
		t.Fatal("expected error for blank token")
	}
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("test-secret", "mealplan")
	token, err := v.IssueToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ac, err := v.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ac.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", ac.UserID, "user-1")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewVerifier("secret-a", "").IssueToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewVerifier("secret-b", "").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	v := NewVerifier("test-secret", "")
	v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := v.IssueToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	v.now = time.Now
	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	token, err := NewVerifier("test-secret", "someone-else").IssueToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewVerifier("test-secret", "mealplan").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "user-1",
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewVerifier("test-secret", "").Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyFallsBackToSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	ac, err := NewVerifier("test-secret", "").Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ac.UserID != "user-9" {
		t.Errorf("UserID = %q, want %q", ac.UserID, "user-9")
	}
}

func TestIssueEmptyUser(t *testing.T) {
	if _, err := NewVerifier("s", "").IssueToken("", time.Hour); err == nil {
		t.Error("expected error for empty user id")
	}
}

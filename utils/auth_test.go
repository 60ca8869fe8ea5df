package utils

import (
	"testing"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWTToken("uid-1", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateJWTToken failed: %v", err)
	}

	claims, err := ParseJWTToken(token)
	if err != nil {
		t.Fatalf("ParseJWTToken failed: %v", err)
	}
	if claims.UserID != "uid-1" {
		t.Errorf("Expected user_id uid-1, got %s", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Expected email alice@example.com, got %s", claims.Email)
	}
	if claims.Subject != "uid-1" {
		t.Errorf("Expected subject uid-1, got %s", claims.Subject)
	}
}

func TestParseJWTTokenRejectsGarbage(t *testing.T) {
	SetJWTSecret("test-secret")

	if _, err := ParseJWTToken("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseJWTTokenRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWTToken("uid-1", "alice@example.com")
	if err != nil {
		t.Fatalf("GenerateJWTToken failed: %v", err)
	}

	SetJWTSecret("other-secret")
	if _, err := ParseJWTToken(token); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("s3cret-password", hash) {
		t.Error("Expected hash to verify against the original password")
	}
	if CheckPasswordHash("wrong-password", hash) {
		t.Error("Expected hash to reject a wrong password")
	}
}

func TestExtractNameFromEmail(t *testing.T) {
	if got := ExtractNameFromEmail("alice@example.com"); got != "alice" {
		t.Errorf("Expected alice, got %s", got)
	}
	if got := ExtractNameFromEmail("no-at-sign"); got != "no-at-sign" {
		t.Errorf("Expected input returned unchanged, got %s", got)
	}
}

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateToken("42", "operator", "op@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "42" || claims.Username != "operator" || claims.TokenType != TokenTypeAccess {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTManager_RefreshToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	token, err := m.GenerateRefreshToken("7")
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh || claims.UserID != "7" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Hour)
	other := NewJWTManager("other-secret", time.Hour, time.Hour)
	expired := NewJWTManager("secret", -time.Minute, time.Hour)

	foreign, _ := other.GenerateToken("1", "a", "b")
	stale, _ := expired.GenerateToken("1", "a", "b")

	tests := map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  foreign,
		"expired token": stale,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("hunter22", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPasswordHash("hunter23", hash) {
		t.Error("expected wrong password to be rejected")
	}
}

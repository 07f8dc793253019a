package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	tests := []Identity{
		{UserID: "u1", WorkspaceID: "ws-1", SessionID: "s1"},
		{UserID: "ops", Admin: true},
		{UserID: "ops", WorkspaceID: "ws-2", Admin: true},
	}
	for _, id := range tests {
		access, jti, exp, err := p.IssueAccess(id)
		if err != nil {
			t.Fatalf("IssueAccess: %v", err)
		}
		if access == "" || jti == "" {
			t.Fatal("access token or jti empty")
		}
		if exp.Before(time.Now()) {
			t.Fatal("expires at in the past")
		}
		got, err := p.ValidateAccess(access)
		if err != nil {
			t.Fatalf("ValidateAccess: %v", err)
		}
		if got != id {
			t.Errorf("ValidateAccess = %+v, want %+v", got, id)
		}
	}
}

func TestTokenProvider_ValidateAccessInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, err := p.ValidateAccess("invalid-token"); err != ErrInvalidToken {
		t.Errorf("ValidateAccess invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RejectsTokenWithoutScope(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, _, _, err := p.IssueAccess(Identity{UserID: "u1"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("token with no workspace and no admin flag: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_WrongAudienceOrIssuer(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, _, _, err := p.IssueAccess(Identity{UserID: "u1", WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	other := NewTokenProvider(p.privateKey, p.publicKey, "test-issuer", "other-audience", time.Minute)
	if _, err := other.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong audience: want ErrInvalidToken, got %v", err)
	}
	other = NewTokenProvider(p.privateKey, p.publicKey, "other-issuer", "test-audience", time.Minute)
	if _, err := other.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	expired := NewTokenProvider(p.privateKey, p.publicKey, "test-issuer", "test-audience", -time.Minute)
	access, _, _, err := expired.IssueAccess(Identity{WorkspaceID: "ws-1"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("expired token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RejectsHMAC(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			Audience:  jwt.ClaimStrings{"test-audience"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Admin: true,
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("guess"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.ValidateAccess(forged); err != ErrInvalidToken {
		t.Errorf("HS256 token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_IssueWithoutPrivateKey(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	verifier := NewTokenProvider(nil, p.publicKey, "test-issuer", "test-audience", time.Minute)
	if _, _, _, err := verifier.IssueAccess(Identity{Admin: true}); err != ErrInvalidKey {
		t.Errorf("IssueAccess without key: want ErrInvalidKey, got %v", err)
	}
}

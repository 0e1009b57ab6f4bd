package auth

import (
	"testing"
	"time"
)

func TestMintAndParseToken(t *testing.T) {
	token, err := MintToken("123456789", RoleAdmin, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	claims, err := ParseToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.DiscordID() != "123456789" {
		t.Errorf("DiscordID = %q, want 123456789", claims.DiscordID())
	}
	if !claims.IsAdmin() {
		t.Error("Admin role should report IsAdmin")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := MintToken("123456789", "gateway", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("Token signed with a different secret must be rejected")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := MintToken("123456789", "gateway", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	if _, err := ParseToken(token, "test-secret"); err == nil {
		t.Fatal("Expired token must be rejected")
	}
}

func TestNonAdminRole(t *testing.T) {
	token, err := MintToken("123456789", "gateway", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	claims, err := ParseToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.IsAdmin() {
		t.Error("Gateway role must not report IsAdmin")
	}
}

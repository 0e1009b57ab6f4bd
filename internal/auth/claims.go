package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only privileged API role. Everything else the service
// exposes over HTTP is read-only.
const RoleAdmin = "admin"

// UserClaims is what handlers read off an authenticated request.
type UserClaims interface {
	DiscordID() string
	Role() string
	IsAdmin() bool
}

// APIClaims is the JWT payload minted for the bot gateway and the admin
// dashboard.
type APIClaims struct {
	DiscordUID string `json:"discord_uid"`
	APIRole    string `json:"role"`
	jwt.RegisteredClaims
}

func (c *APIClaims) DiscordID() string { return c.DiscordUID }
func (c *APIClaims) Role() string      { return c.APIRole }
func (c *APIClaims) IsAdmin() bool     { return c.APIRole == RoleAdmin }

// ParseToken validates a signed token and returns its claims.
func ParseToken(tokenString, secret string) (*APIClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &APIClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*APIClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// MintToken signs a token for the given identity and role. Used by the
// bootstrap CLI and by tests.
func MintToken(discordID, role, secret string, ttl time.Duration) (string, error) {
	claims := &APIClaims{
		DiscordUID: discordID,
		APIRole:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Issuer:    "quartermaster",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

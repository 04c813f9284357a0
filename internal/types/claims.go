package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT payload carried in the session cookie. Username is the
// canonical lowercase account name; everything that needs "who is acting"
// reads it from here via the auth middleware.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

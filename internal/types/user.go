package types

import (
	"github.com/google/uuid"
)

// User is an account record. Usernames are stored lowercase and treated as
// unique; uniqueness is checked before insert rather than enforced by a
// constraint, matching the behavior of the system this replaces.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
}

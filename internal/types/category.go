package types

import "github.com/google/uuid"

// Category is read-only reference data enumerated in navigation and the
// create/edit forms.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

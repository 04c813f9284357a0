package types

import (
	"time"

	"github.com/google/uuid"
)

// Recipe is the central domain record. CreatedAt is immutable after insert;
// UpdatedAt is refreshed on every content update. Active=false means the
// recipe is soft-deleted: hidden from public listings but restorable by its
// owner.
type Recipe struct {
	ID            uuid.UUID `json:"id"`
	Owner         string    `json:"owner"`
	Category      string    `json:"category"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Ingredients   []string  `json:"ingredients"`
	Steps         []string  `json:"steps"`
	RequiredTools []string  `json:"required_tools"`
	Servings      string    `json:"servings"`
	PrepTime      string    `json:"prep_time"`
	CookTime      string    `json:"cook_time"`
	ImageURL      string    `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Active        bool      `json:"active"`
}

// RecipeParams carries the user-editable recipe fields submitted by the
// create and edit forms. Owner and timestamps are never part of it; the
// service stamps those itself.
type RecipeParams struct {
	Category      string   `json:"category"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Ingredients   []string `json:"ingredients"`
	Steps         []string `json:"steps"`
	RequiredTools []string `json:"required_tools"`
	Servings      string   `json:"servings"`
	PrepTime      string   `json:"prep_time"`
	CookTime      string   `json:"cook_time"`
	ImageURL      string   `json:"image_url"`
}

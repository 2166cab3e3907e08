package models

import "time"

// Bookmark is a named list of talent names owned by a user.
type Bookmark struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	UserID    string    `json:"userId" bson:"user_id"`
	Talents   []string  `json:"talents" bson:"talents"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type CreateBookmarkRequest struct {
	Name    string   `json:"name" validate:"required"`
	Talents []string `json:"talents"`
}

// ToggleBookmarkRequest adds the talent to the list if absent, removes it
// if present.
type ToggleBookmarkRequest struct {
	Talent string `json:"talent" validate:"required"`
}

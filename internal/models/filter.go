package models

import "time"

// Filter reference kinds, each backed by its own collection.
const (
	FilterKindLanguage = "language"
	FilterKindGenre    = "genre"
	FilterKindPlatform = "platform"
	FilterKindSkill    = "skills"
)

// FilterOption is a named lookup record (language, genre, platform, skill)
// that talents and projects reference by id.
type FilterOption struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

type FilterOptionRequest struct {
	Title string `json:"title" validate:"required"`
}

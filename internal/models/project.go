package models

import "time"

// Project is a production that talents can be linked to via their
// projects reference.
type Project struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Year        *int      `json:"year,omitempty" bson:"year,omitempty"`
	Genre       string    `json:"genre,omitempty" bson:"genre,omitempty"`
	Platform    string    `json:"platform,omitempty" bson:"platform,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// ProjectName is the lightweight projection served by /projectfilters.
type ProjectName struct {
	ID    string `json:"id" bson:"_id"`
	Title string `json:"title" bson:"title"`
}

type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Year        *int   `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Genre       string `json:"genre"`
	Platform    string `json:"platform"`
}

type UpdateProjectRequest struct {
	Description *string `json:"description"`
	Year        *int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Genre       *string `json:"genre"`
	Platform    *string `json:"platform"`
}

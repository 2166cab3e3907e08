package models

import "time"

// Talent is a casting profile. Name is the public lookup key and is unique
// across the collection; ID is the storage key.
type Talent struct {
	ID             string   `json:"id" bson:"_id"`
	Name           string   `json:"name" bson:"name"`
	BirthYear      *int     `json:"birthYear,omitempty" bson:"birth_year,omitempty"`
	Gender         string   `json:"gender,omitempty" bson:"gender,omitempty"`
	Height         *float64 `json:"height,omitempty" bson:"height,omitempty"`
	Email          string   `json:"email,omitempty" bson:"email,omitempty"`
	Phone          string   `json:"phone,omitempty" bson:"phone,omitempty"`
	LanguageSpoken []string `json:"languageSpoken,omitempty" bson:"language_spoken,omitempty"`
	Projects       string   `json:"projects,omitempty" bson:"projects,omitempty"`
	WithApplause   bool     `json:"withApplause,omitempty" bson:"with_applause,omitempty"`

	ThumbnailID  string `json:"-" bson:"thumbnail_id,omitempty"`
	IntroVideoID string `json:"-" bson:"intro_video_id,omitempty"`

	// Expanded media references, populated on reads and never persisted.
	Thumbnail  *Media `json:"thumbnail,omitempty" bson:"-"`
	IntroVideo *Media `json:"introVideo,omitempty" bson:"-"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// TalentName is the lightweight projection served by /talentfilters.
type TalentName struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

type CreateTalentRequest struct {
	Name           string   `json:"name" validate:"required"`
	BirthYear      *int     `json:"birthYear" validate:"omitempty,gte=1900,lte=2100"`
	Gender         string   `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Height         *float64 `json:"height" validate:"omitempty,gt=0"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Phone          string   `json:"phone"`
	LanguageSpoken []string `json:"languageSpoken"`
	Projects       string   `json:"projects"`
	WithApplause   *bool    `json:"withApplause"`
}

// UpdateTalentRequest carries partial updates: nil fields are left untouched.
// Media ids are filled in by the handler after any uploads are stored.
type UpdateTalentRequest struct {
	BirthYear      *int     `json:"birthYear" validate:"omitempty,gte=1900,lte=2100"`
	Gender         *string  `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Height         *float64 `json:"height" validate:"omitempty,gt=0"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Phone          *string  `json:"phone"`
	LanguageSpoken []string `json:"languageSpoken"`
	Projects       *string  `json:"projects"`
	WithApplause   *bool    `json:"withApplause"`

	ThumbnailID  *string `json:"-"`
	IntroVideoID *string `json:"-"`
}

// NumericRange is an inclusive [Low, High] bound parsed from a "low-high"
// query token. A single token yields Low == High (exact match).
type NumericRange struct {
	Low  float64
	High float64
}

// Exact reports whether the range collapses to a single value.
func (r NumericRange) Exact() bool { return r.Low == r.High }

// TalentQuery is the typed form of the /talents list parameters. All
// conditions are combined with logical AND; zero values impose none.
type TalentQuery struct {
	Limit int64
	Skip  int64

	Gender    string
	Projects  string
	Height    *NumericRange
	BirthYear *NumericRange

	// LanguageTitles is the raw comma-separated language parameter;
	// LanguageIDs holds the resolved reference ids. When titles were
	// supplied but none resolved, the query must match nothing.
	LanguageTitles []string
	LanguageIDs    []string
}

// FilterByLanguage reports whether the caller asked for a language
// condition at all, resolved or not.
func (q *TalentQuery) FilterByLanguage() bool { return len(q.LanguageTitles) > 0 }

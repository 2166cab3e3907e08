package models

import "time"

// Media kinds as tagged on stored files.
const (
	MediaKindImage = "Image"
	MediaKindVideo = "Video"
)

// Media is the stored representation of an uploaded file. The blob itself
// lives in the configured storage backend at ObjectPath; the document is
// what talent records reference and what reads expand into.
type Media struct {
	ID          string    `json:"id" bson:"_id"`
	Kind        string    `json:"kind" bson:"kind"`
	Owner       string    `json:"owner" bson:"owner"`
	Filename    string    `json:"filename" bson:"filename"`
	ObjectPath  string    `json:"-" bson:"object_path"`
	URL         string    `json:"url" bson:"url"`
	Size        int64     `json:"size" bson:"size"`
	ContentType string    `json:"contentType,omitempty" bson:"content_type,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

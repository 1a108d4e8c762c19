package models

// Tag represents a topic articles can be related to
type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Slug string `json:"slug" db:"slug"`
	Name string `json:"name" db:"name"`
}

// TagInput is the payload for creating or renaming a tag
type TagInput struct {
	Name string `json:"name" binding:"required,max=100"`
}

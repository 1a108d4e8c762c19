package models

import (
	"strings"
	"time"
)

// Article represents an article in the system
type Article struct {
	ID         int64     `json:"id" db:"id"`
	Slug       string    `json:"slug" db:"slug"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	AuthorID   *int64    `json:"author_id,omitempty" db:"author_id"`
	AuthorSlug *string   `json:"-" db:"author_slug"` // Loaded from the authors join
	PubDate    time.Time `json:"pub_date" db:"pub_date"`
	Tags       []Tag     `json:"tags" db:"-"` // Loaded from article_tags
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TagCount returns the number of related tags
func (a *Article) TagCount() int {
	return len(a.Tags)
}

// TagIDs returns the IDs of related tags in relation order
func (a *Article) TagIDs() []int64 {
	ids := make([]int64, 0, len(a.Tags))
	for _, t := range a.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// HasTag reports whether the article is related to the tag
func (a *Article) HasTag(tagID int64) bool {
	for _, t := range a.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

// TagsAsString returns the names of all related tags as a single string
func (a *Article) TagsAsString() string {
	names := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

// IsAuthoredBy reports whether authorID owns the article.
// Articles without an author are owned by nobody.
func (a *Article) IsAuthoredBy(authorID int64) bool {
	return a.AuthorID != nil && *a.AuthorID == authorID
}

// Clone returns a deep copy so callers can mutate without touching shared state
func (a *Article) Clone() *Article {
	c := *a
	if a.AuthorID != nil {
		id := *a.AuthorID
		c.AuthorID = &id
	}
	if a.AuthorSlug != nil {
		s := *a.AuthorSlug
		c.AuthorSlug = &s
	}
	c.Tags = append([]Tag(nil), a.Tags...)
	return &c
}

// ArticleInput is the payload for creating or replacing an article.
// Author is accepted so clients sending it are not rejected, but it is never used.
type ArticleInput struct {
	Title   string     `json:"title" binding:"required,max=150"`
	Content string     `json:"content" binding:"required"`
	PubDate *time.Time `json:"pub_date,omitempty"`
	Tags    []string   `json:"tags" binding:"required,dive,required"`
	Author  any        `json:"author,omitempty"`
}

// ArticlePatch is the payload for a partial article update
type ArticlePatch struct {
	Title   *string    `json:"title,omitempty" binding:"omitempty,min=1,max=150"`
	Content *string    `json:"content,omitempty" binding:"omitempty,min=1"`
	PubDate *time.Time `json:"pub_date,omitempty"`
	Tags    *[]string  `json:"tags,omitempty" binding:"omitempty,dive,required"`
	Author  any        `json:"author,omitempty"`
}

// Patch converts a full replacement payload into a patch touching every field
func (in *ArticleInput) Patch() *ArticlePatch {
	tags := in.Tags
	return &ArticlePatch{
		Title:   &in.Title,
		Content: &in.Content,
		PubDate: in.PubDate,
		Tags:    &tags,
	}
}

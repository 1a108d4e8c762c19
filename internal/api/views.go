package api

import (
	"time"

	"github.com/library-api/internal/models"
)

type articleView struct {
	URL       string    `json:"url"`
	ID        int64     `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    *string   `json:"author"`
	Tags      []string  `json:"tags"`
	TagNames  string    `json:"tag_names"`
	PubDate   time.Time `json:"pub_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l linkBuilder) renderArticle(a *models.Article) articleView {
	v := articleView{
		URL:       l.article(a.Slug),
		ID:        a.ID,
		Slug:      a.Slug,
		Title:     a.Title,
		Content:   a.Content,
		Tags:      make([]string, 0, len(a.Tags)),
		TagNames:  a.TagsAsString(),
		PubDate:   a.PubDate,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.AuthorSlug != nil {
		author := l.author(*a.AuthorSlug)
		v.Author = &author
	}
	for _, t := range a.Tags {
		v.Tags = append(v.Tags, l.tag(t.Slug))
	}
	return v
}

type tagView struct {
	URL  string `json:"url"`
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type tagDetailView struct {
	tagView
	Articles []string `json:"articles"`
}

func (l linkBuilder) renderTag(t *models.Tag) tagView {
	return tagView{URL: l.tag(t.Slug), ID: t.ID, Slug: t.Slug, Name: t.Name}
}

type authorView struct {
	URL      string    `json:"url"`
	ID       int64     `json:"id"`
	Slug     string    `json:"slug"`
	UserName string    `json:"user_name"`
	Email    string    `json:"email"`
	IsStaff  bool      `json:"is_staff"`
	Joined   time.Time `json:"joined"`
}

type authorDetailView struct {
	authorView
	Articles []string `json:"articles"`
}

func (l linkBuilder) renderAuthor(a *models.Author) authorView {
	return authorView{
		URL:      l.author(a.Slug),
		ID:       a.ID,
		Slug:     a.Slug,
		UserName: a.UserName,
		Email:    a.Email,
		IsStaff:  a.IsStaff,
		Joined:   a.Joined,
	}
}

// articleLinks lists article URLs for detail views
func (l linkBuilder) articleLinks(articles []*models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, l.article(a.Slug))
	}
	return out
}

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/library-api/internal/mocks"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
	"github.com/library-api/internal/repository"
)

func int64Ptr(v int64) *int64 { return &v }

func TestConflictError_Column(t *testing.T) {
	tests := []struct {
		table      string
		constraint string
		want       string
	}{
		{"articles", "articles_title_key", "title"},
		{"authors", "authors_user_name_key", "user_name"},
		{"authors", "authors_email_key", "email"},
		{"tags", "tags_name_key", "name"},
	}

	for _, tt := range tests {
		err := &repository.ConflictError{Table: tt.table, Constraint: tt.constraint}
		if got := err.Column(); got != tt.want {
			t.Errorf("Column() for %s = %q, want %q", tt.constraint, got, tt.want)
		}
	}
}

func TestMockArticleRepository_JoinsTagsAndAuthor(t *testing.T) {
	_, articles, tags, authors := mocks.NewMockRepositories()
	ctx := context.Background()

	authors.Put(&models.Author{ID: 1, Slug: "alice", UserName: "alice", Email: "alice@test.com"})
	tags.Put(&models.Tag{ID: 10, Slug: "go", Name: "go"})
	tags.Put(&models.Tag{ID: 11, Slug: "databases", Name: "databases"})
	articles.Put(&models.Article{
		ID: 100, Slug: "past", Title: "Past", Content: "c", AuthorID: int64Ptr(1),
		PubDate: time.Now(), Tags: []models.Tag{{ID: 10}, {ID: 11}},
	})

	a, err := articles.GetBySlug(ctx, "past")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if a == nil {
		t.Fatal("article not found")
	}
	if a.AuthorSlug == nil || *a.AuthorSlug != "alice" {
		t.Errorf("expected author slug alice, got %v", a.AuthorSlug)
	}
	if got := a.TagsAsString(); got != "databases, go" {
		t.Errorf("expected tags ordered by name, got %q", got)
	}
}

func TestMockArticleRepository_ListScopes(t *testing.T) {
	_, articles, tags, _ := mocks.NewMockRepositories()
	ctx := context.Background()

	tags.Put(&models.Tag{ID: 10, Slug: "go", Name: "go"})
	articles.Put(&models.Article{ID: 1, Slug: "a", Title: "A", AuthorID: int64Ptr(7), Tags: []models.Tag{{ID: 10}}})
	articles.Put(&models.Article{ID: 2, Slug: "b", Title: "B", AuthorID: int64Ptr(8)})
	articles.Put(&models.Article{ID: 3, Slug: "c", Title: "C"})

	tests := []struct {
		name  string
		scope publication.Scope
		want  int
	}{
		{"all", publication.All(), 3},
		{"by author", publication.ByAuthor(7), 1},
		{"by tag", publication.ByTag(10), 1},
		{"unknown tag", publication.ByTag(99), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := articles.List(ctx, tt.scope)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d articles, got %d", tt.want, len(got))
			}
		})
	}
}

func TestMockArticleRepository_UniqueTitle(t *testing.T) {
	_, articles, _, _ := mocks.NewMockRepositories()
	ctx := context.Background()

	if err := articles.Create(ctx, &models.Article{ID: 1, Slug: "a", Title: "Same"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := articles.Create(ctx, &models.Article{ID: 2, Slug: "b", Title: "Same"})
	var conflict *repository.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Column() != "title" {
		t.Errorf("expected title conflict, got %s", conflict.Column())
	}
}

func TestMockTagRepository_DeleteKeepsArticles(t *testing.T) {
	_, articles, tags, _ := mocks.NewMockRepositories()
	ctx := context.Background()

	tags.Put(&models.Tag{ID: 10, Slug: "go", Name: "go"})
	articles.Put(&models.Article{ID: 1, Slug: "a", Title: "A", Tags: []models.Tag{{ID: 10}}})

	if err := tags.Delete(ctx, 10); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	a, _ := articles.GetByID(ctx, 1)
	if a == nil {
		t.Fatal("article should survive tag deletion")
	}
	if a.TagCount() != 0 {
		t.Errorf("expected no tags, got %d", a.TagCount())
	}
}

func TestMockAuthorRepository_DeleteCascades(t *testing.T) {
	_, articles, _, authors := mocks.NewMockRepositories()
	ctx := context.Background()

	authors.Put(&models.Author{ID: 1, Slug: "alice", UserName: "alice", Email: "alice@test.com"})
	articles.Put(&models.Article{ID: 1, Slug: "a", Title: "A", AuthorID: int64Ptr(1)})
	articles.Put(&models.Article{ID: 2, Slug: "b", Title: "B"})

	if err := authors.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	count, _ := articles.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 article left, got %d", count)
	}
	if err := authors.Delete(ctx, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMockAuthorRepository_EmailExists(t *testing.T) {
	_, _, _, authors := mocks.NewMockRepositories()
	ctx := context.Background()

	authors.Put(&models.Author{ID: 1, Slug: "alice", UserName: "alice", Email: "alice@test.com"})

	exists, err := authors.EmailExists(ctx, "ALICE@test.com", 0)
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if !exists {
		t.Error("email should exist regardless of case")
	}

	exists, _ = authors.EmailExists(ctx, "alice@test.com", 1)
	if exists {
		t.Error("the author's own email should be excluded")
	}
}

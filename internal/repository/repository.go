package repository

import (
	"context"

	"github.com/library-api/internal/database"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
)

// ArticleRepository defines the interface for article data operations.
// Lookups return (nil, nil) when no row matches.
type ArticleRepository interface {
	// List returns every stored article in scope with its tags and author slug,
	// read from a single snapshot. Visibility is not applied here.
	List(ctx context.Context, scope publication.Scope) ([]*models.Article, error)
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
	// Create inserts the article and its tag relations in one transaction
	Create(ctx context.Context, article *models.Article) error
	// Update rewrites the article and replaces its tag relations in one transaction
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	List(ctx context.Context) ([]*models.Tag, error)
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	// GetBySlugs returns the tags matching slugs; missing slugs are simply absent
	GetBySlugs(ctx context.Context, slugs []string) ([]*models.Tag, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// AuthorRepository defines the interface for author data operations
type AuthorRepository interface {
	List(ctx context.Context) ([]*models.Author, error)
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	GetBySlug(ctx context.Context, slug string) (*models.Author, error)
	GetByUserName(ctx context.Context, userName string) (*models.Author, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	UserNameExists(ctx context.Context, userName string, excludeID int64) (bool, error)
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, author *models.Author) error
	Update(ctx context.Context, author *models.Author) error
	// Delete removes the author and, by cascade, their articles
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Tag     TagRepository
	Author  AuthorRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(db),
		Tag:     NewTagRepo(db),
		Author:  NewAuthorRepo(db),
	}
}

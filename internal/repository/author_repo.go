package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/library-api/internal/database"
	"github.com/library-api/internal/models"
)

const authorColumns = "id, slug, user_name, email, password_hash, is_staff, is_active, joined"

// authorRepo is the concrete implementation of AuthorRepository
type authorRepo struct {
	db *database.DB
}

// NewAuthorRepo creates a new author repository
func NewAuthorRepo(db *database.DB) AuthorRepository {
	return &authorRepo{db: db}
}

// List returns all authors ordered by user name
func (r *authorRepo) List(ctx context.Context) ([]*models.Author, error) {
	authors := []*models.Author{}
	err := r.db.SelectContext(ctx, &authors, "SELECT "+authorColumns+" FROM authors ORDER BY user_name")
	return authors, err
}

// GetByID retrieves an author by ID
func (r *authorRepo) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetBySlug retrieves an author by slug
func (r *authorRepo) GetBySlug(ctx context.Context, slug string) (*models.Author, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

// GetByUserName retrieves an author by user name
func (r *authorRepo) GetByUserName(ctx context.Context, userName string) (*models.Author, error) {
	return r.getOne(ctx, "user_name = $1", userName)
}

func (r *authorRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.Author, error) {
	var author models.Author
	err := r.db.GetContext(ctx, &author, "SELECT "+authorColumns+" FROM authors WHERE "+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// SlugExists checks if an author with the given slug exists
func (r *authorRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM authors WHERE slug = $1)", slug)
	return exists, err
}

// UserNameExists checks if another author already uses the user name
func (r *authorRepo) UserNameExists(ctx context.Context, userName string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM authors WHERE user_name = $1 AND id <> $2)", userName, excludeID)
	return exists, err
}

// EmailExists checks if another author already uses the email
func (r *authorRepo) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM authors WHERE lower(email) = lower($1) AND id <> $2)", email, excludeID)
	return exists, err
}

// Create inserts a new author
func (r *authorRepo) Create(ctx context.Context, author *models.Author) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO authors (`+authorColumns+`)
		VALUES (:id, :slug, :user_name, :email, :password_hash, :is_staff, :is_active, :joined)`,
		author)
	return mapError(err)
}

// Update rewrites the mutable account fields; slug and joined are kept
func (r *authorRepo) Update(ctx context.Context, author *models.Author) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE authors
		SET user_name = :user_name, email = :email, password_hash = :password_hash,
			is_staff = :is_staff, is_active = :is_active
		WHERE id = :id`,
		author)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// Delete removes an author; their articles are removed by cascade
func (r *authorRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM authors WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Count returns the total number of authors
func (r *authorRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM authors")
	return count, err
}

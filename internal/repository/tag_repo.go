package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/library-api/internal/database"
	"github.com/library-api/internal/models"
)

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	db *database.DB
}

// NewTagRepo creates a new tag repository
func NewTagRepo(db *database.DB) TagRepository {
	return &tagRepo{db: db}
}

// List returns all tags ordered by name
func (r *tagRepo) List(ctx context.Context) ([]*models.Tag, error) {
	tags := []*models.Tag{}
	err := r.db.SelectContext(ctx, &tags, "SELECT id, slug, name FROM tags ORDER BY name")
	return tags, err
}

// GetByID retrieves a tag by ID
func (r *tagRepo) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	return r.getOne(ctx, "SELECT id, slug, name FROM tags WHERE id = $1", id)
}

// GetBySlug retrieves a tag by slug
func (r *tagRepo) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	return r.getOne(ctx, "SELECT id, slug, name FROM tags WHERE slug = $1", slug)
}

func (r *tagRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.GetContext(ctx, &tag, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetBySlugs retrieves the tags matching any of slugs
func (r *tagRepo) GetBySlugs(ctx context.Context, slugs []string) ([]*models.Tag, error) {
	tags := []*models.Tag{}
	if len(slugs) == 0 {
		return tags, nil
	}
	err := r.db.SelectContext(ctx, &tags,
		"SELECT id, slug, name FROM tags WHERE slug = ANY($1) ORDER BY name", pq.Array(slugs))
	return tags, err
}

// SlugExists checks if a tag with the given slug exists
func (r *tagRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM tags WHERE slug = $1)", slug)
	return exists, err
}

// NameExists checks if another tag already uses the name
func (r *tagRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM tags WHERE name = $1 AND id <> $2)", name, excludeID)
	return exists, err
}

// Create inserts a new tag
func (r *tagRepo) Create(ctx context.Context, tag *models.Tag) error {
	_, err := r.db.NamedExecContext(ctx,
		"INSERT INTO tags (id, slug, name) VALUES (:id, :slug, :name)", tag)
	return mapError(err)
}

// Update renames a tag; the slug is kept
func (r *tagRepo) Update(ctx context.Context, tag *models.Tag) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tags SET name = $2 WHERE id = $1", tag.ID, tag.Name)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

// Delete removes a tag and its article relations
func (r *tagRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Count returns the total number of tags
func (r *tagRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM tags")
	return count, err
}

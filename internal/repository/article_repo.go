package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/library-api/internal/database"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
)

const articleColumns = `
	a.id, a.slug, a.title, a.content, a.author_id, au.slug AS author_slug,
	a.pub_date, a.created_at, a.updated_at`

const articleFrom = `
	FROM articles a
	LEFT JOIN authors au ON au.id = a.author_id`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// List loads articles and their tags inside one read-only repeatable-read transaction
func (r *articleRepo) List(ctx context.Context, scope publication.Scope) ([]*models.Article, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `SELECT` + articleColumns + articleFrom
	var args []interface{}
	switch scope.Kind {
	case publication.ScopeAuthor:
		query += ` WHERE a.author_id = $1`
		args = append(args, scope.ID)
	case publication.ScopeTag:
		query += ` WHERE EXISTS (SELECT 1 FROM article_tags at WHERE at.article_id = a.id AND at.tag_id = $1)`
		args = append(args, scope.ID)
	}

	var articles []*models.Article
	if err := tx.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	if err := loadTags(ctx, tx, articles); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return articles, nil
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	return r.getOne(ctx, `a.id = $1`, id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, `a.slug = $1`, slug)
}

func (r *articleRepo) getOne(ctx context.Context, where string, arg interface{}) (*models.Article, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var article models.Article
	err = tx.GetContext(ctx, &article, `SELECT`+articleColumns+articleFrom+` WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := loadTags(ctx, tx, []*models.Article{&article}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &article, nil
}

type articleTagRow struct {
	ArticleID int64 `db:"article_id"`
	models.Tag
}

// loadTags fills the Tags field of every article with one query
func loadTags(ctx context.Context, q sqlx.QueryerContext, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Article, len(articles))
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		a.Tags = []models.Tag{}
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	var rows []articleTagRow
	err := sqlx.SelectContext(ctx, q, &rows, `
		SELECT at.article_id, t.id, t.slug, t.name
		FROM article_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = ANY($1)
		ORDER BY t.name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load article tags: %w", err)
	}

	for _, row := range rows {
		if a := byID[row.ArticleID]; a != nil {
			a.Tags = append(a.Tags, row.Tag)
		}
	}
	return nil
}

// SlugExists checks if an article with the given slug exists
func (r *articleRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)", slug)
	return exists, err
}

// TitleExists checks if another article already uses the title
func (r *articleRepo) TitleExists(ctx context.Context, title string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM articles WHERE title = $1 AND id <> $2)", title, excludeID)
	return exists, err
}

// Create inserts a new article with its tag relations
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO articles (id, slug, title, content, author_id, pub_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		article.ID, article.Slug, article.Title, article.Content, article.AuthorID,
		article.PubDate, article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	if err := insertArticleTags(ctx, tx, article); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the article row and replaces its tag relations
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE articles SET title = $2, content = $3, pub_date = $4, updated_at = $5
		WHERE id = $1`,
		article.ID, article.Title, article.Content, article.PubDate, article.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM article_tags WHERE article_id = $1", article.ID); err != nil {
		return err
	}
	if err := insertArticleTags(ctx, tx, article); err != nil {
		return err
	}
	return tx.Commit()
}

func insertArticleTags(ctx context.Context, tx *sqlx.Tx, article *models.Article) error {
	if len(article.Tags) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO article_tags (article_id, tag_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`,
		article.ID, pq.Array(article.TagIDs()),
	)
	if err != nil {
		return fmt.Errorf("failed to relate tags: %w", err)
	}
	return nil
}

// Delete removes an article; its tag relations go with it
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Count returns the total number of stored articles
func (r *articleRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM articles")
	return count, err
}

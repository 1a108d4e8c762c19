package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/library-api/internal/access"
	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
	"github.com/library-api/internal/repository"
	"github.com/library-api/internal/slugs"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	articles repository.ArticleRepository
	tags     repository.TagRepository
	ids      IDGenerator
	now      Clock
	order    publication.Ordering
	log      zerolog.Logger
}

func newArticleService(repos *repository.Repositories, ids IDGenerator, clock Clock, order publication.Ordering, log zerolog.Logger) *articleService {
	return &articleService{
		articles: repos.Article,
		tags:     repos.Tag,
		ids:      ids,
		now:      clock,
		order:    order,
		log:      log.With().Str("service", "article").Logger(),
	}
}

func (s *articleService) query(scope publication.Scope) publication.Query {
	return publication.Query{Scope: scope, Order: s.order, Now: s.now()}
}

// List returns the visible articles in scope in the configured order
func (s *articleService) List(ctx context.Context, scope publication.Scope) ([]*models.Article, error) {
	q := s.query(scope)

	stored, err := s.articles.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles (%s): %w", scope, err)
	}
	return q.Apply(stored), nil
}

// Get returns a visible article; invisible and absent articles are reported identically
func (s *articleService) Get(ctx context.Context, ref string) (*models.Article, error) {
	q := s.query(publication.All())

	article, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !q.Admits(article) {
		return nil, apperr.NotFound("article")
	}
	return article, nil
}

func (s *articleService) find(ctx context.Context, ref string) (*models.Article, error) {
	article, err := lookup(ctx, ref, s.articles.GetBySlug, s.articles.GetByID)
	if err != nil {
		return nil, fmt.Errorf("failed to load article %q: %w", ref, err)
	}
	return article, nil
}

// Create stores a new article owned by the caller. Any author in the payload is ignored.
func (s *articleService) Create(ctx context.Context, caller *models.Identity, in *models.ArticleInput) (*models.Article, error) {
	if err := s.AuthorizeCreate(caller); err != nil {
		return nil, err
	}

	now := s.now()
	tags, fieldErrs, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	taken, err := s.articles.TitleExists(ctx, in.Title, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		fieldErrs = apperr.Merge(fieldErrs, duplicate("article", "title").Fields)
	}
	if len(fieldErrs) > 0 {
		return nil, apperr.Invalid(fieldErrs)
	}

	slug, err := slugs.Unique(ctx, in.Title, s.articles.SlugExists)
	if err != nil {
		return nil, err
	}

	authorID := caller.AuthorID
	article := &models.Article{
		ID:        s.ids.NextID(),
		Slug:      slug,
		Title:     in.Title,
		Content:   in.Content,
		AuthorID:  &authorID,
		PubDate:   now,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.PubDate != nil {
		article.PubDate = *in.PubDate
	}

	if err := s.articles.Create(ctx, article); err != nil {
		return nil, storeError(err, "article")
	}

	s.log.Info().
		Int64("article_id", article.ID).
		Str("slug", article.Slug).
		Int64("author_id", authorID).
		Bool("visible", publication.Visible(article, now)).
		Msg("Article created")

	return s.reload(ctx, article.ID)
}

// Update applies a patch to an article the caller owns
func (s *articleService) Update(ctx context.Context, caller *models.Identity, ref string, patch *models.ArticlePatch) (*models.Article, error) {
	article, err := s.writable(ctx, caller, ref)
	if err != nil {
		return nil, err
	}

	fieldErrs := map[string][]string{}
	if patch.Title != nil && *patch.Title != article.Title {
		taken, err := s.articles.TitleExists(ctx, *patch.Title, article.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			fieldErrs = apperr.Merge(fieldErrs, duplicate("article", "title").Fields)
		}
		article.Title = *patch.Title
	}
	if patch.Content != nil {
		article.Content = *patch.Content
	}
	if patch.PubDate != nil {
		article.PubDate = *patch.PubDate
	}
	if patch.Tags != nil {
		tags, tagErrs, err := s.resolveTags(ctx, *patch.Tags)
		if err != nil {
			return nil, err
		}
		fieldErrs = apperr.Merge(fieldErrs, tagErrs)
		article.Tags = tags
	}
	if len(fieldErrs) > 0 {
		return nil, apperr.Invalid(fieldErrs)
	}

	article.UpdatedAt = s.now()
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, storeError(err, "article")
	}

	s.log.Info().Int64("article_id", article.ID).Int64("author_id", caller.AuthorID).Msg("Article updated")
	return s.reload(ctx, article.ID)
}

// Delete removes an article the caller owns
func (s *articleService) Delete(ctx context.Context, caller *models.Identity, ref string) error {
	article, err := s.writable(ctx, caller, ref)
	if err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, article.ID); err != nil {
		return storeError(err, "article")
	}

	s.log.Info().Int64("article_id", article.ID).Int64("author_id", caller.AuthorID).Msg("Article deleted")
	return nil
}

// AuthorizeCreate requires an authenticated caller
func (s *articleService) AuthorizeCreate(caller *models.Identity) error {
	if !access.CanCreateArticle(caller) {
		return apperr.Forbidden("authentication credentials were not provided")
	}
	return nil
}

// AuthorizeWrite reports the error Update or Delete would fail with before touching the payload
func (s *articleService) AuthorizeWrite(ctx context.Context, caller *models.Identity, ref string) error {
	_, err := s.writable(ctx, caller, ref)
	return err
}

// writable resolves the target of a write. Owners reach their own hidden
// articles; anyone else gets not-found for hidden articles and forbidden
// for visible ones.
func (s *articleService) writable(ctx context.Context, caller *models.Identity, ref string) (*models.Article, error) {
	q := s.query(publication.All())

	article, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apperr.NotFound("article")
	}
	if access.CanWriteArticle(caller, article) {
		return article, nil
	}
	if !q.Admits(article) {
		return nil, apperr.NotFound("article")
	}
	return nil, apperr.Forbidden("you do not have permission to modify this article")
}

func (s *articleService) reload(ctx context.Context, id int64) (*models.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload article %d: %w", id, err)
	}
	if article == nil {
		return nil, apperr.NotFound("article")
	}
	return article, nil
}

// resolveTags maps tag references (slugs or tag URLs) to stored tags.
// Unknown references are returned as field errors on "tags".
func (s *articleService) resolveTags(ctx context.Context, refs []string) ([]models.Tag, map[string][]string, error) {
	wanted := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		slug := tagSlug(ref)
		if !seen[slug] {
			seen[slug] = true
			wanted = append(wanted, slug)
		}
	}

	found, err := s.tags.GetBySlugs(ctx, wanted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve tags: %w", err)
	}

	bySlug := make(map[string]*models.Tag, len(found))
	for _, t := range found {
		bySlug[t.Slug] = t
	}

	tags := make([]models.Tag, 0, len(wanted))
	var fieldErrs map[string][]string
	for _, slug := range wanted {
		t, ok := bySlug[slug]
		if !ok {
			fieldErrs = apperr.Merge(fieldErrs, map[string][]string{
				"tags": {fmt.Sprintf("invalid tag %q: object does not exist", slug)},
			})
			continue
		}
		tags = append(tags, *t)
	}
	return tags, fieldErrs, nil
}

// tagSlug accepts "go", "/api/tags/go" or "https://host/api/tags/go/"
func tagSlug(ref string) string {
	ref = strings.TrimRight(strings.TrimSpace(ref), "/")
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		ref = ref[i+1:]
	}
	return ref
}

package service

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/library-api/internal/auth"
	"github.com/library-api/internal/config"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
	"github.com/library-api/internal/repository"
)

// ArticleService defines the article operations. Reads only ever see visible articles.
type ArticleService interface {
	List(ctx context.Context, scope publication.Scope) ([]*models.Article, error)
	Get(ctx context.Context, ref string) (*models.Article, error)
	Create(ctx context.Context, caller *models.Identity, in *models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, caller *models.Identity, ref string, patch *models.ArticlePatch) (*models.Article, error)
	Delete(ctx context.Context, caller *models.Identity, ref string) error
	// AuthorizeCreate and AuthorizeWrite run the write gate alone, so callers
	// can refuse a request before decoding its body
	AuthorizeCreate(caller *models.Identity) error
	AuthorizeWrite(ctx context.Context, caller *models.Identity, ref string) error
}

// TagService defines the tag operations
type TagService interface {
	List(ctx context.Context) ([]*models.Tag, error)
	Get(ctx context.Context, ref string) (*models.Tag, error)
	Create(ctx context.Context, caller *models.Identity, in *models.TagInput) (*models.Tag, error)
	Update(ctx context.Context, caller *models.Identity, ref string, in *models.TagInput) (*models.Tag, error)
	Delete(ctx context.Context, caller *models.Identity, ref string) error
	AuthorizeWrite(caller *models.Identity) error
}

// AuthorService defines the account operations
type AuthorService interface {
	List(ctx context.Context) ([]*models.Author, error)
	Get(ctx context.Context, ref string) (*models.Author, error)
	Register(ctx context.Context, caller *models.Identity, in *models.RegisterInput) (*models.Author, error)
	// CreateStaff creates a staff account outside the request path
	CreateStaff(ctx context.Context, in *models.RegisterInput) (*models.Author, error)
	Update(ctx context.Context, caller *models.Identity, ref string, patch *models.AuthorPatch) (*models.Author, error)
	Delete(ctx context.Context, caller *models.Identity, ref string) error
	AuthorizeRegister(caller *models.Identity) error
	AuthorizeWrite(ctx context.Context, caller *models.Identity, ref string) error
}

// AuthService verifies credentials and bearer tokens
type AuthService interface {
	Login(ctx context.Context, in *models.LoginInput) (*models.AuthToken, error)
	// Authenticate resolves a bearer token to the current identity of its author
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// StatsService reports record counts
type StatsService interface {
	Counts(ctx context.Context) (*models.Stats, error)
}

// IDGenerator hands out primary keys
type IDGenerator interface {
	NextID() int64
}

// Clock returns the current time. Services read it once per operation.
type Clock func() time.Time

// Services holds all service interfaces
type Services struct {
	Articles ArticleService
	Tags     TagService
	Authors  AuthorService
	Auth     AuthService
	Stats    StatsService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, ids IDGenerator, clock Clock, log zerolog.Logger) (*Services, error) {
	order, err := publication.ParseOrdering(cfg.Publication.Ordering)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	policy := auth.PasswordPolicy{MinLength: cfg.Auth.MinPasswordLength}
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock)

	return &Services{
		Articles: newArticleService(repos, ids, clock, order, log),
		Tags:     newTagService(repos.Tag, ids, log),
		Authors:  newAuthorService(repos.Author, ids, clock, hasher, policy, log),
		Auth:     newAuthService(repos.Author, hasher, tokens, log),
		Stats:    newStatsService(repos, clock, log),
	}, nil
}

// lookup resolves a path identifier: slug first, then numeric ID
func lookup[T any](ctx context.Context, ref string,
	bySlug func(context.Context, string) (*T, error),
	byID func(context.Context, int64) (*T, error),
) (*T, error) {
	found, err := bySlug(ctx, ref)
	if err != nil || found != nil {
		return found, err
	}
	id, perr := strconv.ParseInt(ref, 10, 64)
	if perr != nil {
		return nil, nil
	}
	return byID(ctx, id)
}

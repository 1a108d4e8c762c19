package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/library-api/internal/access"
	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/auth"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/repository"
	"github.com/library-api/internal/slugs"
)

// authorService is the concrete implementation of AuthorService
type authorService struct {
	authors repository.AuthorRepository
	ids     IDGenerator
	now     Clock
	hasher  *auth.PasswordHasher
	policy  auth.PasswordPolicy
	log     zerolog.Logger
}

func newAuthorService(authors repository.AuthorRepository, ids IDGenerator, clock Clock,
	hasher *auth.PasswordHasher, policy auth.PasswordPolicy, log zerolog.Logger) *authorService {
	return &authorService{
		authors: authors,
		ids:     ids,
		now:     clock,
		hasher:  hasher,
		policy:  policy,
		log:     log.With().Str("service", "author").Logger(),
	}
}

// List returns all authors ordered by user name
func (s *authorService) List(ctx context.Context) ([]*models.Author, error) {
	return s.authors.List(ctx)
}

// Get returns an author by slug or ID
func (s *authorService) Get(ctx context.Context, ref string) (*models.Author, error) {
	author, err := lookup(ctx, ref, s.authors.GetBySlug, s.authors.GetByID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author %q: %w", ref, err)
	}
	if author == nil {
		return nil, apperr.NotFound("author")
	}
	return author, nil
}

// Register creates an account for an anonymous caller
func (s *authorService) Register(ctx context.Context, caller *models.Identity, in *models.RegisterInput) (*models.Author, error) {
	if err := s.AuthorizeRegister(caller); err != nil {
		return nil, err
	}
	return s.create(ctx, in, false)
}

// AuthorizeRegister requires an anonymous caller
func (s *authorService) AuthorizeRegister(caller *models.Identity) error {
	if !access.CanRegister(caller) {
		return apperr.Forbidden("you are already registered")
	}
	return nil
}

// AuthorizeWrite requires the caller to be the addressed author
func (s *authorService) AuthorizeWrite(ctx context.Context, caller *models.Identity, ref string) error {
	_, err := s.writable(ctx, caller, ref)
	return err
}

func (s *authorService) writable(ctx context.Context, caller *models.Identity, ref string) (*models.Author, error) {
	author, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !access.CanWriteAuthor(caller, author) {
		return nil, apperr.Forbidden("you may only modify your own account")
	}
	return author, nil
}

// CreateStaff creates a staff account
func (s *authorService) CreateStaff(ctx context.Context, in *models.RegisterInput) (*models.Author, error) {
	return s.create(ctx, in, true)
}

func (s *authorService) create(ctx context.Context, in *models.RegisterInput, staff bool) (*models.Author, error) {
	fieldErrs, err := s.checkAccount(ctx, in.UserName, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if problems := s.policy.Validate(in.Password, in.UserName, in.Email); len(problems) > 0 {
		fieldErrs = apperr.Merge(fieldErrs, map[string][]string{"password": problems})
	}
	if len(fieldErrs) > 0 {
		return nil, apperr.Invalid(fieldErrs)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	slug, err := slugs.Unique(ctx, in.UserName, s.authors.SlugExists)
	if err != nil {
		return nil, err
	}

	author := &models.Author{
		ID:           s.ids.NextID(),
		Slug:         slug,
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
		IsStaff:      staff,
		IsActive:     true,
		Joined:       s.now(),
	}
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, storeError(err, "author")
	}

	s.log.Info().
		Int64("author_id", author.ID).
		Str("user_name", author.UserName).
		Bool("staff", staff).
		Msg("Author registered")
	return author, nil
}

// Update changes the caller's own account
func (s *authorService) Update(ctx context.Context, caller *models.Identity, ref string, patch *models.AuthorPatch) (*models.Author, error) {
	author, err := s.writable(ctx, caller, ref)
	if err != nil {
		return nil, err
	}

	if patch.UserName != nil {
		author.UserName = *patch.UserName
	}
	if patch.Email != nil {
		author.Email = *patch.Email
	}

	fieldErrs, err := s.checkAccount(ctx, author.UserName, author.Email, author.ID)
	if err != nil {
		return nil, err
	}
	if patch.Password != nil {
		if problems := s.policy.Validate(*patch.Password, author.UserName, author.Email); len(problems) > 0 {
			fieldErrs = apperr.Merge(fieldErrs, map[string][]string{"password": problems})
		}
	}
	if len(fieldErrs) > 0 {
		return nil, apperr.Invalid(fieldErrs)
	}

	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		author.PasswordHash = hash
	}

	if err := s.authors.Update(ctx, author); err != nil {
		return nil, storeError(err, "author")
	}

	s.log.Info().Int64("author_id", author.ID).Msg("Author updated")
	return author, nil
}

// Delete removes the caller's own account together with their articles
func (s *authorService) Delete(ctx context.Context, caller *models.Identity, ref string) error {
	author, err := s.writable(ctx, caller, ref)
	if err != nil {
		return err
	}
	if err := s.authors.Delete(ctx, author.ID); err != nil {
		return storeError(err, "author")
	}

	s.log.Info().Int64("author_id", author.ID).Msg("Author deleted")
	return nil
}

// checkAccount reports user name and email collisions with other authors
func (s *authorService) checkAccount(ctx context.Context, userName, email string, excludeID int64) (map[string][]string, error) {
	var fieldErrs map[string][]string

	taken, err := s.authors.UserNameExists(ctx, userName, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		fieldErrs = apperr.Merge(fieldErrs, duplicate("author", "user_name").Fields)
	}

	taken, err = s.authors.EmailExists(ctx, email, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		fieldErrs = apperr.Merge(fieldErrs, duplicate("author", "email").Fields)
	}
	return fieldErrs, nil
}

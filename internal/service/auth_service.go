package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/auth"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/repository"
)

// authService is the concrete implementation of AuthService
type authService struct {
	authors repository.AuthorRepository
	hasher  *auth.PasswordHasher
	tokens  *auth.TokenIssuer
	log     zerolog.Logger
}

func newAuthService(authors repository.AuthorRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, log zerolog.Logger) *authService {
	return &authService{
		authors: authors,
		hasher:  hasher,
		tokens:  tokens,
		log:     log.With().Str("service", "auth").Logger(),
	}
}

// Login checks credentials and issues a bearer token
func (s *authService) Login(ctx context.Context, in *models.LoginInput) (*models.AuthToken, error) {
	author, err := s.authors.GetByUserName(ctx, in.UserName)
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	if author == nil || !author.IsActive || !s.hasher.Compare(author.PasswordHash, in.Password) {
		s.log.Warn().Str("user_name", in.UserName).Msg("Login rejected")
		return nil, apperr.Unauthorized("unable to log in with provided credentials")
	}

	token, expires, err := s.tokens.Issue(author)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("author_id", author.ID).Msg("Token issued")
	return &models.AuthToken{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expires,
		Author:    author.Identity(),
	}, nil
}

// Authenticate resolves a token; deleted and deactivated authors are rejected
func (s *authService) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	author, err := s.authors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load author %d: %w", id, err)
	}
	if author == nil || !author.IsActive {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return author.Identity(), nil
}

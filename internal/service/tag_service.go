package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/library-api/internal/access"
	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/repository"
	"github.com/library-api/internal/slugs"
)

// tagService is the concrete implementation of TagService
type tagService struct {
	tags repository.TagRepository
	ids  IDGenerator
	log  zerolog.Logger
}

func newTagService(tags repository.TagRepository, ids IDGenerator, log zerolog.Logger) *tagService {
	return &tagService{
		tags: tags,
		ids:  ids,
		log:  log.With().Str("service", "tag").Logger(),
	}
}

// List returns all tags ordered by name
func (s *tagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.tags.List(ctx)
}

// Get returns a tag by slug or ID
func (s *tagService) Get(ctx context.Context, ref string) (*models.Tag, error) {
	tag, err := lookup(ctx, ref, s.tags.GetBySlug, s.tags.GetByID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tag %q: %w", ref, err)
	}
	if tag == nil {
		return nil, apperr.NotFound("tag")
	}
	return tag, nil
}

// Create adds a tag; staff only
func (s *tagService) Create(ctx context.Context, caller *models.Identity, in *models.TagInput) (*models.Tag, error) {
	if err := s.AuthorizeWrite(caller); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	slug, err := slugs.Unique(ctx, in.Name, s.tags.SlugExists)
	if err != nil {
		return nil, err
	}

	tag := &models.Tag{ID: s.ids.NextID(), Slug: slug, Name: in.Name}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, storeError(err, "tag")
	}

	s.log.Info().Int64("tag_id", tag.ID).Str("slug", tag.Slug).Msg("Tag created")
	return tag, nil
}

// Update renames a tag; staff only. The slug does not change.
func (s *tagService) Update(ctx context.Context, caller *models.Identity, ref string, in *models.TagInput) (*models.Tag, error) {
	if err := s.AuthorizeWrite(caller); err != nil {
		return nil, err
	}
	tag, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, in.Name, tag.ID); err != nil {
		return nil, err
	}

	tag.Name = in.Name
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, storeError(err, "tag")
	}

	s.log.Info().Int64("tag_id", tag.ID).Msg("Tag updated")
	return tag, nil
}

// Delete removes a tag and its article relations; staff only
func (s *tagService) Delete(ctx context.Context, caller *models.Identity, ref string) error {
	if err := s.AuthorizeWrite(caller); err != nil {
		return err
	}
	tag, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.tags.Delete(ctx, tag.ID); err != nil {
		return storeError(err, "tag")
	}

	s.log.Info().Int64("tag_id", tag.ID).Msg("Tag deleted")
	return nil
}

// AuthorizeWrite requires a staff caller
func (s *tagService) AuthorizeWrite(caller *models.Identity) error {
	if !access.CanWriteTag(caller) {
		return apperr.Forbidden("only staff may manage tags")
	}
	return nil
}

func (s *tagService) checkName(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.tags.NameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return duplicate("tag", "name")
	}
	return nil
}

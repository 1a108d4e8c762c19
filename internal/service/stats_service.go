package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/library-api/internal/models"
	"github.com/library-api/internal/publication"
	"github.com/library-api/internal/repository"
)

// statsService is the concrete implementation of StatsService
type statsService struct {
	repos *repository.Repositories
	now   Clock
	log   zerolog.Logger
}

func newStatsService(repos *repository.Repositories, clock Clock, log zerolog.Logger) *statsService {
	return &statsService{
		repos: repos,
		now:   clock,
		log:   log.With().Str("service", "stats").Logger(),
	}
}

// Counts gathers record counts concurrently
func (s *statsService) Counts(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	q := publication.Query{Scope: publication.All(), Now: s.now()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		articles, err := s.repos.Article.List(ctx, q.Scope)
		if err != nil {
			return err
		}
		stats.Articles = len(articles)
		stats.VisibleArticles = len(q.Apply(articles))
		return nil
	})
	g.Go(func() (err error) {
		stats.Tags, err = s.repos.Tag.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Authors, err = s.repos.Author.Count(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

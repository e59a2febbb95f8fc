package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joewelow/nano-community/internal/cache"
	"github.com/joewelow/nano-community/internal/config"
	"github.com/joewelow/nano-community/internal/models"
	"github.com/joewelow/nano-community/internal/ranking"
	"github.com/joewelow/nano-community/internal/storage"
)

// ErrMissingTag is returned by ByTag when no tag was requested. It is a
// client-input error and is raised before any cache or storage access.
var ErrMissingTag = errors.New("missing tag param")

// Service assembles the predicate set for each feed shape, fetches
// candidates, dedups and ranks them, attaches tags, and caches the
// final result.
type Service struct {
	cfg   config.FeedConfig
	store storage.Storage
	cache cache.Store
}

// NewService creates a feed service over the given collaborators.
func NewService(cfg config.FeedConfig, store storage.Storage, cacheStore cache.Store) *Service {
	return &Service{
		cfg:   cfg,
		store: store,
		cache: cacheStore,
	}
}

// ByTag returns posts carrying at least one of the requested tags,
// ranked by plain strength. At least one tag is required.
func (s *Service) ByTag(ctx context.Context, tags []string, offset, limit int) ([]models.Post, error) {
	if len(tags) == 0 {
		return nil, ErrMissingTag
	}
	if limit <= 0 {
		limit = s.cfg.TagsLimit
	}
	if limit > s.cfg.TagsMaxLimit {
		limit = s.cfg.TagsMaxLimit
	}

	key := cache.TagsKey(tags)
	if posts, ok := s.cache.Get(key); ok {
		return posts, nil
	}

	candidates, err := s.store.Candidates(ctx, storage.CandidateQuery{
		Tags:                    tags,
		RequireText:             true,
		ExcludeProviderPrefixes: s.cfg.ExcludedChannels,
		Strength:                storage.StrengthPlain,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting tag candidates: %w", err)
	}

	posts := ranking.Dedupe(candidates)
	ranking.SortByStrength(posts)
	posts = ranking.Page(posts, offset, limit)

	if err := s.enrich(ctx, posts); err != nil {
		return nil, err
	}
	s.cache.Set(key, posts)
	return posts, nil
}

// Trending returns recent posts above the score floor, ranked by
// time-decayed strength. The score floor also keeps the log term of the
// decay formula defined.
func (s *Service) Trending(ctx context.Context) ([]models.Post, error) {
	key := cache.TrendingKey()
	if posts, ok := s.cache.Get(key); ok {
		return posts, nil
	}

	candidates, err := s.store.Candidates(ctx, storage.CandidateQuery{
		RequireText:             true,
		MaxAge:                  time.Duration(s.cfg.TrendingAgeHours) * time.Hour,
		ScoreFloor:              s.cfg.TrendingScoreFloor,
		HasScoreFloor:           true,
		ExcludeProviderPrefixes: s.cfg.TrendingExcludedChannels,
		Strength:                storage.StrengthDecayed,
		DecayConstant:           s.cfg.TrendingDecay,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting trending candidates: %w", err)
	}

	posts := ranking.Dedupe(candidates)
	ranking.SortByStrength(posts)
	posts = ranking.Page(posts, 0, s.cfg.TrendingLimit)

	if err := s.enrich(ctx, posts); err != nil {
		return nil, err
	}
	s.cache.Set(key, posts)
	return posts, nil
}

// Top returns the strongest posts inside an age window, ranked by plain
// strength. ageHours of zero or less falls back to the configured
// default.
func (s *Service) Top(ctx context.Context, ageHours int) ([]models.Post, error) {
	if ageHours <= 0 {
		ageHours = s.cfg.TopAgeHours
	}

	key := cache.TopKey(ageHours)
	if posts, ok := s.cache.Get(key); ok {
		return posts, nil
	}

	candidates, err := s.store.Candidates(ctx, storage.CandidateQuery{
		RequireText:             true,
		MaxAge:                  time.Duration(ageHours) * time.Hour,
		ExcludeProviderPrefixes: s.cfg.ExcludedChannels,
		Strength:                storage.StrengthPlain,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting top candidates: %w", err)
	}

	posts := ranking.Dedupe(candidates)
	ranking.SortByStrength(posts)
	posts = ranking.Page(posts, 0, s.cfg.TopLimit)

	if err := s.enrich(ctx, posts); err != nil {
		return nil, err
	}
	s.cache.Set(key, posts)
	return posts, nil
}

// Announcements returns recent posts from the active announcement
// channels, newest first. No strength is computed and no text filter
// applies to this shape.
func (s *Service) Announcements(ctx context.Context, ageHours int) ([]models.Post, error) {
	if ageHours <= 0 {
		ageHours = s.cfg.AnnouncementsAgeHours
	}

	key := cache.AnnouncementsKey(ageHours)
	if posts, ok := s.cache.Get(key); ok {
		return posts, nil
	}

	candidates, err := s.store.Candidates(ctx, storage.CandidateQuery{
		MaxAge:                  time.Duration(ageHours) * time.Hour,
		IncludeProviderPrefixes: s.cfg.AnnouncementChannels,
		Strength:                storage.StrengthNone,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting announcement candidates: %w", err)
	}

	posts := ranking.Dedupe(candidates)
	ranking.SortByCreated(posts)

	if err := s.enrich(ctx, posts); err != nil {
		return nil, err
	}
	s.cache.Set(key, posts)
	return posts, nil
}

// enrich attaches tag associations to the selected posts in a single
// batched lookup, preserving order. Posts without tags get an empty
// list.
func (s *Service) enrich(ctx context.Context, posts []models.Post) error {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	assocs, err := s.store.TagsForPosts(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetching post tags: %w", err)
	}

	byPost := make(map[int64][]models.Tag, len(posts))
	for _, t := range assocs {
		byPost[t.PostID] = append(byPost[t.PostID], t)
	}

	for i := range posts {
		if tags, ok := byPost[posts[i].ID]; ok {
			posts[i].Tags = tags
		} else {
			posts[i].Tags = []models.Tag{}
		}
	}
	return nil
}

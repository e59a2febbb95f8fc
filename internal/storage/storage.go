package storage

import (
	"context"
	"time"

	"github.com/joewelow/nano-community/internal/models"
)

// StrengthMode selects the strength projection the store computes for
// each candidate row.
type StrengthMode int

const (
	// StrengthNone leaves strength at zero (recency-ranked shapes).
	StrengthNone StrengthMode = iota
	// StrengthPlain computes score / score_avg.
	StrengthPlain
	// StrengthDecayed computes log10(score / score_avg) minus a linear
	// age penalty, using a single "now" for the whole query.
	StrengthDecayed
)

// CandidateQuery describes one feed shape's predicate and projection
// set. Provider prefixes are matched against the leading characters of
// posts.pid.
type CandidateQuery struct {
	// Tags restricts candidates to posts carrying at least one of the
	// given tags (OR-matched). Empty means no tag filter.
	Tags []string

	// MaxAge keeps only posts newer than now minus MaxAge. Zero means
	// no age window.
	MaxAge time.Duration

	// ScoreFloor keeps only posts with score strictly above the floor
	// when HasScoreFloor is set.
	ScoreFloor    float64
	HasScoreFloor bool

	// RequireText keeps only posts with a non-null, non-empty text.
	RequireText bool

	ExcludeProviderPrefixes []string
	IncludeProviderPrefixes []string

	Strength StrengthMode

	// DecayConstant is the decay divisor in seconds, used with
	// StrengthDecayed.
	DecayConstant float64
}

// Storage defines the read-only interface for post retrieval
type Storage interface {
	// Candidates returns the raw candidate rows for a query, joined to
	// their source and carrying the requested strength projection.
	// Deduplication, final ordering and paging happen in the caller.
	Candidates(ctx context.Context, q CandidateQuery) ([]models.Post, error)

	// TagsForPosts returns all tag associations for the given post ids
	// in a single batched lookup.
	TagsForPosts(ctx context.Context, postIDs []int64) ([]models.Tag, error)

	// Close closes the storage connection
	Close() error
}

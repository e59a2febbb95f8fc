package cache

import (
	"fmt"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/joewelow/nano-community/internal/models"
)

// Store is the injected response cache capability. Implementations must
// be safe for concurrent use; a read returns a previously completed
// write or nothing.
type Store interface {
	Get(key string) ([]models.Post, bool)
	Set(key string, posts []models.Post)
	Flush()
}

// Memory is an in-process Store with no expiry. Entries live until the
// process exits or Flush is called.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Get(key string) ([]models.Post, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	posts, ok := v.([]models.Post)
	return posts, ok
}

func (m *Memory) Set(key string, posts []models.Post) {
	m.c.Set(key, posts, gocache.NoExpiration)
}

func (m *Memory) Flush() {
	m.c.Flush()
}

// TagsKey derives the cache key for a by-tag request. Tags are sorted
// lexicographically first so request order never splits cache entries.
func TagsKey(tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	return "tags_" + strings.Join(sorted, "-")
}

// TrendingKey is the constant key for the parameterless trending shape.
func TrendingKey() string {
	return "trending"
}

// TopKey derives the cache key for a top request with the given age in
// hours.
func TopKey(ageHours int) string {
	return fmt.Sprintf("top%d", ageHours)
}

// AnnouncementsKey derives the cache key for an announcements request
// with the given age in hours.
func AnnouncementsKey(ageHours int) string {
	return fmt.Sprintf("announcements%d", ageHours)
}

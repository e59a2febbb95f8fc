package ranking

import (
	"testing"

	"github.com/joewelow/nano-community/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPlainStrength(t *testing.T) {
	assert.InDelta(t, 2.0, PlainStrength(10, 5), 1e-9)
	assert.InDelta(t, 0.5, PlainStrength(5, 10), 1e-9)
}

func TestDecayedStrengthMonotonic(t *testing.T) {
	// Two otherwise-identical posts: the older one must score strictly lower.
	young := DecayedStrength(10, 2, 3600, 90000)
	old := DecayedStrength(10, 2, 7200, 90000)
	assert.Greater(t, young, old)

	// A larger decay constant penalizes age less.
	slow := DecayedStrength(10, 2, 3600, 180000)
	assert.Greater(t, slow, young)
}

func TestDedupe(t *testing.T) {
	posts := []models.Post{
		{ID: 1, MainURL: "https://a", Strength: 1.0},
		{ID: 2, MainURL: "https://b", Strength: 3.0},
		{ID: 3, MainURL: "https://a", Strength: 2.0},
		{ID: 4, MainURL: "https://b", Strength: 0.5},
	}

	out := Dedupe(posts)

	assert.Len(t, out, 2)
	seen := map[string]models.Post{}
	for _, p := range out {
		_, dup := seen[p.MainURL]
		assert.False(t, dup, "duplicate main_url %s", p.MainURL)
		seen[p.MainURL] = p
	}
	assert.Equal(t, int64(3), seen["https://a"].ID)
	assert.Equal(t, int64(2), seen["https://b"].ID)
}

func TestDedupeTieBreaksOnLowestID(t *testing.T) {
	posts := []models.Post{
		{ID: 9, MainURL: "https://a", Strength: 1.5},
		{ID: 4, MainURL: "https://a", Strength: 1.5},
		{ID: 7, MainURL: "https://a", Strength: 1.5},
	}

	out := Dedupe(posts)

	assert.Len(t, out, 1)
	assert.Equal(t, int64(4), out[0].ID)
}

func TestSortByStrength(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Strength: 0.5},
		{ID: 2, Strength: 2.0},
		{ID: 3, Strength: 2.0},
		{ID: 4, Strength: 1.0},
	}

	SortByStrength(posts)

	assert.Equal(t, []int64{2, 3, 4, 1}, ids(posts))
}

func TestSortByCreated(t *testing.T) {
	posts := []models.Post{
		{ID: 1, CreatedAt: 100},
		{ID: 2, CreatedAt: 300},
		{ID: 3, CreatedAt: 300},
		{ID: 4, CreatedAt: 200},
	}

	SortByCreated(posts)

	assert.Equal(t, []int64{2, 3, 4, 1}, ids(posts))
}

func TestPage(t *testing.T) {
	posts := []models.Post{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}}

	assert.Equal(t, []int64{1, 2, 3}, ids(Page(posts, 0, 3)))
	assert.Equal(t, []int64{3, 4}, ids(Page(posts, 2, 2)))
	assert.Equal(t, []int64{4, 5}, ids(Page(posts, 3, 10)))
	assert.Empty(t, Page(posts, 10, 3))
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(Page(posts, 0, 0)))
}

func ids(posts []models.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

package ranking

import (
	"math"
	"sort"

	"github.com/joewelow/nano-community/internal/models"
)

// PlainStrength returns a post's raw score relative to its source's
// typical score, making scores comparable across sources of differing
// popularity. scoreAvg must be positive; that is an ingestion-side data
// hygiene requirement, not guarded here.
func PlainStrength(score, scoreAvg float64) float64 {
	return score / scoreAvg
}

// DecayedStrength returns a time-decayed strength: log10 of the score
// ratio minus a linear age penalty. A larger decay constant means slower
// decay. The score ratio must be positive (callers enforce a score floor
// before this is applied), otherwise the log term is undefined.
func DecayedStrength(score, scoreAvg, ageSeconds, decay float64) float64 {
	return math.Log10(score/scoreAvg) - ageSeconds/decay
}

// Dedupe collapses candidates sharing a main_url down to one
// representative per URL: the highest-strength member, ties broken by
// lowest post id. Group order follows first appearance in the input.
func Dedupe(posts []models.Post) []models.Post {
	byURL := make(map[string]models.Post, len(posts))
	order := make([]string, 0, len(posts))

	for _, p := range posts {
		cur, seen := byURL[p.MainURL]
		if !seen {
			byURL[p.MainURL] = p
			order = append(order, p.MainURL)
			continue
		}
		if p.Strength > cur.Strength || (p.Strength == cur.Strength && p.ID < cur.ID) {
			byURL[p.MainURL] = p
		}
	}

	out := make([]models.Post, 0, len(order))
	for _, u := range order {
		out = append(out, byURL[u])
	}
	return out
}

// SortByStrength orders posts by descending strength. Equal strengths
// fall back to ascending id so pagination stays stable.
func SortByStrength(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Strength != posts[j].Strength {
			return posts[i].Strength > posts[j].Strength
		}
		return posts[i].ID < posts[j].ID
	})
}

// SortByCreated orders posts newest first, ties by ascending id.
func SortByCreated(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt != posts[j].CreatedAt {
			return posts[i].CreatedAt > posts[j].CreatedAt
		}
		return posts[i].ID < posts[j].ID
	})
}

// Page applies offset then limit to an already sorted, deduped sequence.
// A limit of zero or less means no limit.
func Page(posts []models.Post, offset, limit int) []models.Post {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(posts) {
		return []models.Post{}
	}
	posts = posts[offset:]
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

package models

// Post represents a single content item produced by a source. The base
// columns come from the posts table; the source fields are joined in at
// query time and MainURL/Strength are computed per query.
type Post struct {
	ID         int64   `json:"id"`
	SourceID   int64   `json:"sid"`
	ProviderID string  `json:"pid"`
	Score      float64 `json:"score"`
	URL        string  `json:"url"`
	ContentURL string  `json:"content_url"`
	Text       string  `json:"text"`
	CreatedAt  int64   `json:"created_at"`

	SourceTitle   string  `json:"source_title"`
	SourceLogoURL string  `json:"source_logo_url"`
	ScoreAvg      float64 `json:"score_avg"`

	// MainURL is the canonical URL used for deduplication: the content
	// URL when set, otherwise the primary URL.
	MainURL string `json:"main_url"`

	// Strength is the computed ranking value. Announcements are ranked
	// by recency and carry no strength, so it is omitted when zero.
	Strength float64 `json:"strength,omitempty"`

	Tags []Tag `json:"tags"`
}

// Source is a content origin. ScoreAvg is the typical raw score for
// posts from this source and is used to normalize scores across sources.
type Source struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	LogoURL  string  `json:"logo_url"`
	ScoreAvg float64 `json:"score_avg"`
}

// Tag associates a post with a tag label.
type Tag struct {
	PostID int64  `json:"post_id"`
	Tag    string `json:"tag"`
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/joewelow/nano-community/internal/models"
	"github.com/joewelow/nano-community/internal/ranking"
)

// The scoring functions run inside the query so the strength column is
// computed server-side with one time source per statement.
func init() {
	sql.Register("sqlite3_feed", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if err := conn.RegisterFunc("plain_strength", ranking.PlainStrength, true); err != nil {
				return err
			}
			return conn.RegisterFunc("decayed_strength", ranking.DecayedStrength, true)
		},
	})
}

// SQLiteStorage implements Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3_feed", dbPath)
	if err != nil {
		return nil, err
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initDB(); err != nil {
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database schema
func (s *SQLiteStorage) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS sources (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		logo_url TEXT NOT NULL DEFAULT '',
		score_avg REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY,
		sid INTEGER NOT NULL REFERENCES sources(id),
		pid TEXT NOT NULL,
		score REAL NOT NULL DEFAULT 0,
		url TEXT NOT NULL,
		content_url TEXT NOT NULL DEFAULT '',
		text TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS post_tags (
		post_id INTEGER NOT NULL REFERENCES posts(id),
		tag TEXT NOT NULL,
		PRIMARY KEY (post_id, tag)
	);

	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	CREATE INDEX IF NOT EXISTS idx_posts_pid ON posts(pid);
	CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);
	`

	_, err := s.db.Exec(query)
	return err
}

// Candidates returns candidate rows for a feed query. The strength
// column is computed in the statement; the row order is by strength (or
// recency) but the caller still dedups and re-sorts.
func (s *SQLiteStorage) Candidates(ctx context.Context, q CandidateQuery) ([]models.Post, error) {
	var (
		where []string
		args  []interface{}
	)

	cols := `posts.id, posts.sid, posts.pid, posts.score, posts.url, posts.content_url,
		COALESCE(posts.text, ''), posts.created_at,
		sources.title, sources.logo_url, sources.score_avg,
		CASE WHEN posts.content_url = '' THEN posts.url ELSE posts.content_url END AS main_url`

	switch q.Strength {
	case StrengthPlain:
		cols += ",\n\t\tplain_strength(posts.score, sources.score_avg) AS strength"
	case StrengthDecayed:
		cols += ",\n\t\tdecayed_strength(posts.score, sources.score_avg, CAST(strftime('%s','now') - posts.created_at AS REAL), ?) AS strength"
		args = append(args, q.DecayConstant)
	default:
		cols += ",\n\t\t0.0 AS strength"
	}

	query := "SELECT " + cols + "\n\tFROM sources\n\tJOIN posts ON posts.sid = sources.id"

	if len(q.Tags) > 0 {
		query += "\n\tJOIN post_tags ON post_tags.post_id = posts.id"
		placeholders := make([]string, len(q.Tags))
		for i, tag := range q.Tags {
			placeholders[i] = "?"
			args = append(args, tag)
		}
		where = append(where, "post_tags.tag IN ("+strings.Join(placeholders, ",")+")")
	}

	if q.RequireText {
		where = append(where, "posts.text IS NOT NULL AND posts.text <> ''")
	}

	if q.MaxAge > 0 {
		where = append(where, "posts.created_at > strftime('%s','now') - ?")
		args = append(args, int64(q.MaxAge.Seconds()))
	}

	if q.HasScoreFloor {
		where = append(where, "posts.score > ?")
		args = append(args, q.ScoreFloor)
	}

	for _, prefix := range q.ExcludeProviderPrefixes {
		where = append(where, "posts.pid NOT LIKE ?")
		args = append(args, prefix+"%")
	}

	if len(q.IncludeProviderPrefixes) > 0 {
		likes := make([]string, len(q.IncludeProviderPrefixes))
		for i, prefix := range q.IncludeProviderPrefixes {
			likes[i] = "posts.pid LIKE ?"
			args = append(args, prefix+"%")
		}
		where = append(where, "("+strings.Join(likes, " OR ")+")")
	}

	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, "\n\t\tAND ")
	}

	if q.Strength == StrengthNone {
		query += "\n\tORDER BY posts.created_at DESC, posts.id ASC"
	} else {
		query += "\n\tORDER BY strength DESC, posts.id ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		err := rows.Scan(
			&p.ID,
			&p.SourceID,
			&p.ProviderID,
			&p.Score,
			&p.URL,
			&p.ContentURL,
			&p.Text,
			&p.CreatedAt,
			&p.SourceTitle,
			&p.SourceLogoURL,
			&p.ScoreAvg,
			&p.MainURL,
			&p.Strength,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// TagsForPosts fetches tag associations for a set of posts in one query.
func (s *SQLiteStorage) TagsForPosts(ctx context.Context, postIDs []int64) ([]models.Tag, error) {
	if len(postIDs) == 0 {
		return []models.Tag{}, nil
	}

	placeholders := make([]string, len(postIDs))
	args := make([]interface{}, len(postIDs))
	for i, id := range postIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := "SELECT post_id, tag FROM post_tags WHERE post_id IN (" +
		strings.Join(placeholders, ",") + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying post tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.PostID, &t.Tag); err != nil {
			return nil, fmt.Errorf("scanning post tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

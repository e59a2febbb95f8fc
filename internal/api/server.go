package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joewelow/nano-community/internal/config"
	"github.com/joewelow/nano-community/internal/feed"
	"github.com/joewelow/nano-community/internal/models"
)

// Feed is the query surface the handlers call.
type Feed interface {
	ByTag(ctx context.Context, tags []string, offset, limit int) ([]models.Post, error)
	Trending(ctx context.Context) ([]models.Post, error)
	Top(ctx context.Context, ageHours int) ([]models.Post, error)
	Announcements(ctx context.Context, ageHours int) ([]models.Post, error)
}

// Server handles HTTP requests
type Server struct {
	server *http.Server
}

// NewServer creates a new HTTP server for the feed endpoints
func NewServer(cfg config.ServerConfig, feedSvc Feed) *Server {
	router := NewRouter(feedSvc)

	return &Server{
		server: &http.Server{
			Addr:         cfg.Host + ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(feedSvc Feed) *gin.Engine {
	h := &handlers{feed: feedSvc}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	posts := router.Group("/posts")
	posts.GET("/tags", h.tags)
	posts.GET("/trending", h.trending)
	posts.GET("/top", h.top)
	posts.GET("/announcements", h.announcements)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type handlers struct {
	feed Feed
}

func (h *handlers) tags(c *gin.Context) {
	tags := c.QueryArray("tag")
	offset := parseNonNegative(c.Query("offset"), 0)
	limit := parseNonNegative(c.Query("limit"), 0)

	posts, err := h.feed.ByTag(c.Request.Context(), tags, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handlers) trending(c *gin.Context) {
	posts, err := h.feed.Trending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handlers) top(c *gin.Context) {
	age := parseNonNegative(c.Query("age"), 0)

	posts, err := h.feed.Top(c.Request.Context(), age)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handlers) announcements(c *gin.Context) {
	age := parseNonNegative(c.Query("age"), 0)

	posts, err := h.feed.Announcements(c.Request.Context(), age)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// respondError maps pipeline errors to responses. Client-input errors
// carry their own message; anything else is logged here, the single
// error boundary, and surfaced as a generic failure.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, feed.ErrMissingTag) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("%v", err)})
}

// parseNonNegative parses a query parameter as a non-negative integer,
// falling back to the given default on absence or bad input.
func parseNonNegative(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joewelow/nano-community/internal/feed"
	"github.com/joewelow/nano-community/internal/models"
)

// MockFeed is a mock implementation of the Feed interface
type MockFeed struct {
	mock.Mock
}

func (m *MockFeed) ByTag(ctx context.Context, tags []string, offset, limit int) ([]models.Post, error) {
	args := m.Called(ctx, tags, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockFeed) Trending(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockFeed) Top(ctx context.Context, ageHours int) ([]models.Post, error) {
	args := m.Called(ctx, ageHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockFeed) Announcements(ctx context.Context, ageHours int) ([]models.Post, error) {
	args := m.Called(ctx, ageHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func serve(t *testing.T, f Feed, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := NewRouter(f)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestTagsMissingParam(t *testing.T) {
	m := new(MockFeed)
	m.On("ByTag", mock.Anything, []string(nil), 0, 0).Return(nil, feed.ErrMissingTag).Once()

	w := serve(t, m, "/posts/tags")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "missing tag param", body["error"])
	m.AssertExpectations(t)
}

func TestTagsRepeatedParams(t *testing.T) {
	m := new(MockFeed)
	m.On("ByTag", mock.Anything, []string{"a", "b"}, 10, 20).
		Return([]models.Post{{ID: 1}}, nil).Once()

	w := serve(t, m, "/posts/tags?tag=a&tag=b&offset=10&limit=20")

	assert.Equal(t, http.StatusOK, w.Code)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, int64(1), posts[0].ID)
	m.AssertExpectations(t)
}

func TestTagsBadPagingFallsBack(t *testing.T) {
	m := new(MockFeed)
	m.On("ByTag", mock.Anything, []string{"a"}, 0, 0).
		Return([]models.Post{}, nil).Once()

	w := serve(t, m, "/posts/tags?tag=a&offset=-3&limit=abc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
	m.AssertExpectations(t)
}

func TestTrending(t *testing.T) {
	m := new(MockFeed)
	m.On("Trending", mock.Anything).Return([]models.Post{{ID: 2}}, nil).Once()

	w := serve(t, m, "/posts/trending")

	assert.Equal(t, http.StatusOK, w.Code)
	m.AssertExpectations(t)
}

func TestTopPassesAge(t *testing.T) {
	m := new(MockFeed)
	m.On("Top", mock.Anything, 24).Return([]models.Post{}, nil).Once()

	w := serve(t, m, "/posts/top?age=24")

	assert.Equal(t, http.StatusOK, w.Code)
	m.AssertExpectations(t)
}

func TestAnnouncementsDefaultAge(t *testing.T) {
	m := new(MockFeed)
	m.On("Announcements", mock.Anything, 0).Return([]models.Post{}, nil).Once()

	w := serve(t, m, "/posts/announcements")

	assert.Equal(t, http.StatusOK, w.Code)
	m.AssertExpectations(t)
}

func TestStorageFailureReturns500(t *testing.T) {
	m := new(MockFeed)
	m.On("Trending", mock.Anything).Return(nil, errors.New("db gone")).Once()

	w := serve(t, m, "/posts/trending")

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "db gone")
	m.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	w := serve(t, new(MockFeed), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

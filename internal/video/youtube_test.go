package video

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *YouTubeSearcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewYouTubeSearcher(context.Background(), "test-key", nil, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return s
}

func TestSearch_ReturnsTopVideo(t *testing.T) {
	var gotQuery, gotKey, gotMax string
	s := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		gotMax = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"abc123"},
			 "snippet":{"title":"Go Channels &amp; Select","description":"A talk"}}
		]}`))
	})

	v, err := s.Search(context.Background(), "  go channels tutorial ")
	require.NoError(t, err)
	assert.Equal(t, "abc123", v.ID)
	assert.Equal(t, "Go Channels & Select", v.Title)
	assert.Equal(t, "A talk", v.Description)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", v.URL())

	assert.Equal(t, "go channels tutorial", gotQuery)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "1", gotMax)
}

func TestSearch_NoResults(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	})

	_, err := s.Search(context.Background(), "nothing matches this")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestSearch_APIError(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
	})

	_, err := s.Search(context.Background(), "go")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoResults))
	assert.Contains(t, err.Error(), "403")
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newTestSearcher(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})
	_, err := s.Search(context.Background(), "   ")
	assert.Error(t, err)
}

func TestNewYouTubeSearcher_MissingKey(t *testing.T) {
	_, err := NewYouTubeSearcher(context.Background(), " ", nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

// Package video finds a companion video for a search query.
package video

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/hitensaxena/pathfinder/internal/logging"
)

var (
	// ErrMissingAPIKey is returned when no YouTube API key is configured.
	ErrMissingAPIKey = errors.New("youtube api key is not configured")

	// ErrNoResults is returned when a search matches no video.
	ErrNoResults = errors.New("no videos found")
)

// Video is the best match for a query.
type Video struct {
	ID          string `json:"videoId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// URL is the watch page of the video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Searcher finds at most one video for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (*Video, error)
}

// YouTubeSearcher searches with the YouTube Data API v3.
type YouTubeSearcher struct {
	svc *youtube.Service
	log *logging.Logger
}

// NewYouTubeSearcher creates a searcher using apiKey. Extra options (an
// endpoint or HTTP client) are applied after the key.
func NewYouTubeSearcher(ctx context.Context, apiKey string, log *logging.Logger, opts ...option.ClientOption) (*YouTubeSearcher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube client: %w", err)
	}
	return &YouTubeSearcher{svc: svc, log: logging.OrNop(log)}, nil
}

// Search returns the top video for query.
func (s *YouTubeSearcher) Search(ctx context.Context, query string) (*Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}

	resp, err := s.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(1).
		SafeSearch("strict").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			s.log.Warn("youtube search failed", "query", query, "status", gerr.Code, "error", gerr.Message)
			return nil, fmt.Errorf("youtube search (status %d): %w", gerr.Code, err)
		}
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		v := &Video{ID: item.Id.VideoId}
		if item.Snippet != nil {
			// Snippet text arrives HTML-escaped.
			v.Title = html.UnescapeString(item.Snippet.Title)
			v.Description = html.UnescapeString(item.Snippet.Description)
		}
		return v, nil
	}
	return nil, ErrNoResults
}

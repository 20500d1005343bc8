// Package twitter is the social post source adapter. Every operation
// degrades gracefully: with no bearer token or a failing API the caller
// gets a mock sentinel or an empty timeline, never a fatal error.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/adapters/config"
	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

const twitterAPIBase = "https://api.twitter.com/2"

// mockUserPrefix marks sentinel user ids produced without API access
const mockUserPrefix = "mock_"

// Client fetches users and timelines from the Twitter (X) v2 API
type Client struct {
	bearerToken string
	enabled     bool
	client      *http.Client
	baseURL     string
}

// New creates new Twitter client
func New(cfg *config.TwitterConfig) *Client {
	token := cleanToken(cfg.BearerToken)
	return &Client{
		bearerToken: token,
		enabled:     token != "",
		client:      &http.Client{Timeout: 10 * time.Second},
		baseURL:     twitterAPIBase,
	}
}

// IsEnabled reports whether a bearer token is configured
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// cleanToken trims and URL-decodes the bearer token; tokens pasted from
// env files are often percent-encoded
func cleanToken(token string) string {
	token = strings.TrimSpace(token)
	if strings.Contains(token, "%") {
		if decoded, err := url.QueryUnescape(token); err == nil {
			token = decoded
		}
	}
	return token
}

// LookupUser resolves a handle to an external user. Returns a mock
// sentinel (IsMock=true, APIError set) when credentials are absent or the
// remote service errors.
func (c *Client) LookupUser(ctx context.Context, username string) *models.TwitterUser {
	username = strings.TrimSpace(strings.TrimPrefix(username, "@"))

	if !c.enabled {
		logger.Debug("twitter lookup without API key, returning mock", zap.String("username", username))
		return mockUser(username, "")
	}

	reqURL := fmt.Sprintf("%s/users/by/username/%s?user.fields=description,public_metrics", c.baseURL, url.PathEscape(username))

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		logger.Warn("twitter lookup failed", zap.String("username", username), zap.Error(err))
		return mockUser(username, err.Error())
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return mockUser(username, "Twitter API: Unauthorized (401) - check bearer token")
	case http.StatusForbidden:
		return mockUser(username, "Twitter API: Forbidden (403) - check API access level")
	case http.StatusTooManyRequests:
		return mockUser(username, "Twitter API: Rate limited (429)")
	default:
		return mockUser(username, fmt.Sprintf("Twitter API error: %d", status))
	}

	var result struct {
		Data struct {
			ID            string `json:"id"`
			Username      string `json:"username"`
			Name          string `json:"name"`
			Description   string `json:"description"`
			PublicMetrics struct {
				FollowersCount int `json:"followers_count"`
			} `json:"public_metrics"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return mockUser(username, "Failed to parse Twitter response")
	}
	if len(result.Errors) > 0 {
		return mockUser(username, result.Errors[0].Message)
	}
	if result.Data.ID == "" {
		return mockUser(username, "User not found")
	}

	logger.Debug("twitter user resolved",
		zap.String("username", result.Data.Username),
		zap.String("user_id", result.Data.ID),
	)

	return &models.TwitterUser{
		ID:             result.Data.ID,
		Username:       result.Data.Username,
		Name:           result.Data.Name,
		Description:    result.Data.Description,
		FollowersCount: result.Data.PublicMetrics.FollowersCount,
		IsMock:         false,
	}
}

// FetchUserTweets returns up to maxResults recent posts for a user, most
// recent first. Mock users and API failures yield an empty list.
func (c *Client) FetchUserTweets(ctx context.Context, userID, username string, maxResults int) ([]models.Post, error) {
	if !c.enabled || strings.HasPrefix(userID, mockUserPrefix) {
		logger.Debug("twitter timeline unavailable, returning empty",
			zap.String("user_id", userID),
		)
		return nil, nil
	}

	if maxResults <= 0 {
		maxResults = 10
	}

	reqURL := fmt.Sprintf("%s/users/%s/tweets?max_results=%d&tweet.fields=created_at,public_metrics",
		c.baseURL, url.PathEscape(userID), maxResults)

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("Twitter API error (status %d)", status)
	}

	var result struct {
		Data []struct {
			ID        string    `json:"id"`
			Text      string    `json:"text"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode timeline: %w", err)
	}

	username = strings.TrimPrefix(username, "@")
	posts := make([]models.Post, 0, len(result.Data))
	for _, tweet := range result.Data {
		posts = append(posts, models.Post{
			ID:       tweet.ID,
			Text:     tweet.Text,
			URL:      fmt.Sprintf("https://twitter.com/%s/status/%s", username, tweet.ID),
			PostedAt: tweet.CreatedAt,
		})
	}

	logger.Debug("fetched tweets",
		zap.String("username", username),
		zap.Int("count", len(posts)),
	)

	return posts, nil
}

// GetTweetByID fetches a single tweet's text, for the import-by-URL flow
func (c *Client) GetTweetByID(ctx context.Context, tweetID string) (*models.Post, error) {
	if !c.enabled {
		return nil, fmt.Errorf("twitter API not configured")
	}

	reqURL := fmt.Sprintf("%s/tweets/%s?tweet.fields=text,created_at,author_id", c.baseURL, url.PathEscape(tweetID))

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("Twitter API error (status %d)", status)
	}

	var result struct {
		Data struct {
			ID        string    `json:"id"`
			Text      string    `json:"text"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode tweet: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("Twitter API: %s", result.Errors[0].Message)
	}
	if result.Data.Text == "" {
		return nil, fmt.Errorf("tweet not found")
	}

	return &models.Post{
		ID:       result.Data.ID,
		Text:     result.Data.Text,
		URL:      fmt.Sprintf("https://twitter.com/i/web/status/%s", result.Data.ID),
		PostedAt: result.Data.CreatedAt,
	}, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.bearerToken))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}

func mockUser(username, apiError string) *models.TwitterUser {
	return &models.TwitterUser{
		ID:       mockUserPrefix + username,
		Username: username,
		Name:     username,
		IsMock:   true,
		APIError: apiError,
	}
}

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/lithuaningo/pkg/models"
)

// Client talks to the Lithuaningo sync API. Every mutating call is followed
// by an authoritative re-read; no local increment is trusted.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a new API client
func New(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// do issues one JSON request and decodes the response into out when non-nil.
// Transport failures surface as NetworkError, non-2xx responses as APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// FetchUserStats returns the server-side lifetime counters for a user
func (c *Client) FetchUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var stats models.UserStats
	path := "/users/" + url.PathEscape(userID) + "/stats"
	if err := c.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// IncrementUserCounter bumps one lifetime counter server-side and returns the
// confirmed stats from a follow-up fetch
func (c *Client) IncrementUserCounter(ctx context.Context, userID, counter string) (*models.UserStats, error) {
	if counter == "" {
		return nil, &ValidationError{Field: "counter", Reason: "is required"}
	}
	path := "/users/" + url.PathEscape(userID) + "/stats/increment"
	body := map[string]string{"counter": counter}
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return nil, err
	}
	return c.FetchUserStats(ctx, userID)
}

// FetchChallengeStats returns the server-side challenge counters for one
// learning day
func (c *Client) FetchChallengeStats(ctx context.Context, userID, dateKey string) (*models.ChallengeStats, error) {
	var stats models.ChallengeStats
	path := "/users/" + url.PathEscape(userID) + "/challenge/" + url.PathEscape(dateKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SubmitAnswer records one answered challenge question and returns the
// confirmed counters from a follow-up fetch
func (c *Client) SubmitAnswer(ctx context.Context, userID, dateKey string, correct bool) (*models.ChallengeStats, error) {
	path := "/users/" + url.PathEscape(userID) + "/challenge/" + url.PathEscape(dateKey) + "/answers"
	body := map[string]bool{"correct": correct}
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return nil, err
	}
	return c.FetchChallengeStats(ctx, userID, dateKey)
}

// FetchLeaderboard returns the top entries for a week
func (c *Client) FetchLeaderboard(ctx context.Context, week string, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	path := fmt.Sprintf("/leaderboard/%s?limit=%d", url.PathEscape(week), limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SubmitScore pushes a weekly score; the server keeps the best one
func (c *Client) SubmitScore(ctx context.Context, entry *models.LeaderboardEntry) error {
	if entry.UserID == "" {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if entry.Week == "" {
		return &ValidationError{Field: "week", Reason: "is required"}
	}
	return c.do(ctx, http.MethodPost, "/leaderboard", entry, nil)
}

// FetchDailySentences returns the sentence set for a user's learning day.
// Treated as non-critical by callers: on failure an empty set is a safe
// display default.
func (c *Client) FetchDailySentences(ctx context.Context, userID, dateKey string) ([]models.Sentence, error) {
	var sentences []models.Sentence
	path := "/users/" + url.PathEscape(userID) + "/sentences/" + url.PathEscape(dateKey)
	if err := c.do(ctx, http.MethodGet, path, nil, &sentences); err != nil {
		return nil, err
	}
	return sentences, nil
}

// SubmitReport sends a user report. Required fields are checked before the
// request goes out; a missing ID is filled with a fresh idempotency key.
func (c *Client) SubmitReport(ctx context.Context, report *models.Report) error {
	if report.UserID == "" {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if report.Kind == "" {
		return &ValidationError{Field: "kind", Reason: "is required"}
	}
	if report.Body == "" {
		return &ValidationError{Field: "body", Reason: "is required"}
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	if err := c.do(ctx, http.MethodPost, "/reports", report, nil); err != nil {
		c.logger.Warn("report submission failed",
			zap.String("report_id", report.ID), zap.Error(err))
		return err
	}
	return nil
}

// FetchAppInfo returns version and maintenance flags
func (c *Client) FetchAppInfo(ctx context.Context) (*models.AppInfo, error) {
	var info models.AppInfo
	if err := c.do(ctx, http.MethodGet, "/app-info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

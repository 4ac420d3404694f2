package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"vector/internal/models"
)

// Pool hands out questions for sessions. Satisfied by Client in production
// and by fakes in tests.
type Pool interface {
	Random(ctx context.Context, interviewType, level, excludeID string) (*models.Question, error)
}

// Client fetches random questions from the question service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Random fetches a question matching the interview type and level, optionally
// excluding one already in use.
func (c *Client) Random(ctx context.Context, interviewType, level, excludeID string) (*models.Question, error) {
	q := url.Values{}
	q.Set("topic", interviewType)
	q.Set("difficulty", level)
	if excludeID != "" {
		q.Set("exclude", excludeID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/questions/random?%s", c.baseURL, q.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call question service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question service returned status %d", resp.StatusCode)
	}

	var question models.Question
	if err := json.NewDecoder(resp.Body).Decode(&question); err != nil {
		return nil, fmt.Errorf("failed to decode question response: %w", err)
	}
	return &question, nil
}

// Get fetches a single question by id.
func (c *Client) Get(ctx context.Context, id string) (*models.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/questions/%s", c.baseURL, url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call question service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: question %s", models.ErrNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("question service returned status %d", resp.StatusCode)
	}

	var question models.Question
	if err := json.NewDecoder(resp.Body).Decode(&question); err != nil {
		return nil, fmt.Errorf("failed to decode question response: %w", err)
	}
	return &question, nil
}

package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vector/internal/models"
)

// Directory resolves user ids to profiles for DTO enrichment. Lookups are
// best-effort; callers tolerate failures.
type Directory struct {
	baseURL string
	http    *http.Client
}

func NewDirectory(baseURL string) *Directory {
	return &Directory{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 3 * time.Second},
	}
}

// Get fetches a single user's profile.
func (d *Directory) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/users/%s", d.baseURL, userID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var profile models.UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return &profile, nil
}

// GetMany resolves several ids, skipping any that fail.
func (d *Directory) GetMany(ctx context.Context, userIDs []string) map[string]models.UserProfile {
	out := make(map[string]models.UserProfile, len(userIDs))
	for _, id := range userIDs {
		if p, err := d.Get(ctx, id); err == nil {
			out[id] = *p
		}
	}
	return out
}

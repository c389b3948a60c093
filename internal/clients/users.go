package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// User is the directory's view of a user, including the contact preferences
// the campaign trigger filters on.
type User struct {
	ID          string          `json:"_id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Preferences UserPreferences `json:"preferences"`
}

type UserPreferences struct {
	Promotions      *bool `json:"promotions"`
	OrderUpdates    *bool `json:"orderUpdates"`
	Recommendations *bool `json:"recommendations"`
}

// PromotionsEnabled reports whether the user may be contacted for campaigns.
// Only an explicit opt-out disables promotions.
func (p UserPreferences) PromotionsEnabled() bool {
	return p.Promotions == nil || *p.Promotions
}

type userResponse struct {
	Result *User `json:"result"`
}

type usersResponse struct {
	Result []User `json:"result"`
}

// UsersClient talks to the user directory service.
type UsersClient struct {
	baseURL string
	client  *http.Client
}

func NewUsersClient(baseURL string, timeout time.Duration) *UsersClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UsersClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetEmail resolves a user's email address. A user without an email yields
// an empty string and no error.
func (c *UsersClient) GetEmail(ctx context.Context, userID string) (string, error) {
	var envelope userResponse
	if err := c.getJSON(ctx, c.baseURL+"/"+url.PathEscape(userID), &envelope); err != nil {
		return "", fmt.Errorf("fetch user %s: %w", userID, err)
	}
	if envelope.Result == nil {
		return "", nil
	}
	return envelope.Result.Email, nil
}

// ListUsers returns every user known to the directory.
func (c *UsersClient) ListUsers(ctx context.Context) ([]User, error) {
	var envelope usersResponse
	if err := c.getJSON(ctx, c.baseURL+"/", &envelope); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return envelope.Result, nil
}

func (c *UsersClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("users service returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

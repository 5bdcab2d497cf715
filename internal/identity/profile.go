package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ProfileFetcher fetches the verified profile email for a bearer token.
type ProfileFetcher interface {
	// Email returns the verified email for the principal the token
	// belongs to. Any transport or non-2xx failure is reported as
	// ErrUpstreamIdentity.
	Email(ctx context.Context, token string) (string, error)
}

// profileTimeout bounds the userinfo round trip.
const profileTimeout = 5 * time.Second

// ProfileClient fetches profiles from the identity provider's userinfo
// endpoint.
type ProfileClient struct {
	url    string
	client *http.Client
}

// Ensure ProfileClient implements ProfileFetcher
var _ ProfileFetcher = (*ProfileClient)(nil)

// NewProfileClient creates a client for the userinfo endpoint of the
// given identity provider domain (e.g. "tenant.auth0.com").
func NewProfileClient(providerDomain string) *ProfileClient {
	return &ProfileClient{
		url:    fmt.Sprintf("https://%s/userinfo", providerDomain),
		client: &http.Client{Timeout: profileTimeout},
	}
}

// newProfileClientForTest builds a client against an arbitrary base URL.
func newProfileClientForTest(baseURL string, client *http.Client) *ProfileClient {
	return &ProfileClient{url: baseURL + "/userinfo", client: client}
}

// Email implements ProfileFetcher.
func (c *ProfileClient) Email(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamIdentity, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamIdentity, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: userinfo returned status %d", ErrUpstreamIdentity, resp.StatusCode)
	}

	var profile struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("%w: invalid userinfo response: %v", ErrUpstreamIdentity, err)
	}
	if profile.Email == "" {
		return "", fmt.Errorf("%w: userinfo response carries no email", ErrUpstreamIdentity)
	}

	return profile.Email, nil
}

package courtside

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/providers"
)

// Name identifies this provider in logs and metrics.
const Name = "courtside"

const (
	defaultHTTPTimeout = 10 * time.Second
	usersPath          = "/users.json"
	csrfMetaSelector   = `meta[name="csrf-token"]`
	transientRetries   = 2
)

// Config controls the booking-facility lookup client.
type Config struct {
	BaseURL        string
	AdminPath      string
	FacilityID     string
	RatingProvider string
	SessionCookie  string
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// Client performs read-only member-rating lookups against the booking
// facility. The facility gates its JSON endpoints behind a CSRF token only
// published as a meta tag on its admin HTML pages, so the client scrapes the
// token and refreshes it once when a request comes back 403.
type Client struct {
	baseURL        string
	adminPath      string
	facilityID     string
	ratingProvider string
	sessionCookie  string
	httpClient     *http.Client
	logger         *slog.Logger

	mu        sync.Mutex
	csrfToken string
}

// NewClient constructs a booking-facility client.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	adminPath := cfg.AdminPath
	if adminPath == "" {
		adminPath = "/admin"
	}
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		adminPath:      adminPath,
		facilityID:     cfg.FacilityID,
		ratingProvider: cfg.RatingProvider,
		sessionCookie:  cfg.SessionCookie,
		httpClient:     httpClient,
		logger:         cfg.Logger,
	}
}

// LookupUser searches the facility's member list and returns the first hit,
// or nil when nobody matches.
func (c *Client) LookupUser(ctx context.Context, query string) (*UserRating, error) {
	status, body, err := c.get(ctx, query)
	if err != nil {
		return nil, err
	}

	if status == http.StatusForbidden {
		// Stale or missing CSRF token; re-scrape once and retry.
		if err := c.refreshCSRFToken(ctx); err != nil {
			return nil, err
		}
		status, body, err = c.get(ctx, query)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		c.logFailure(ctx, status, body)
		return nil, &providers.UpstreamError{
			Provider:   Name,
			Operation:  "lookup",
			StatusCode: status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded usersResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("courtside lookup: decoding response: %w", err)
	}
	if len(decoded.Users) == 0 {
		return nil, nil
	}

	user := decoded.Users[0]
	return &UserRating{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Singles: user.CurrentRating.Single,
		Doubles: user.CurrentRating.Double,
	}, nil
}

func (c *Client) get(ctx context.Context, query string) (int, []byte, error) {
	q := url.Values{}
	q.Set("q", query)
	if c.facilityID != "" {
		q.Set("facility_id", c.facilityID)
	}
	if c.ratingProvider != "" {
		q.Set("rating_provider", c.ratingProvider)
	}
	target := c.baseURL + usersPath + "?" + q.Encode()

	var (
		status int
		body   []byte
	)
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if token := c.currentToken(); token != "" {
			req.Header.Set("X-CSRF-Token", token)
		}
		if c.sessionCookie != "" {
			req.Header.Set("Cookie", c.sessionCookie)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		body, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), transientRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return 0, nil, err
	}
	return status, body, nil
}

// refreshCSRFToken scrapes the admin page for the csrf-token meta tag.
func (c *Client) refreshCSRFToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.adminPath, nil)
	if err != nil {
		return err
	}
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logFailure(ctx, resp.StatusCode, body)
		return &providers.UpstreamError{
			Provider:   Name,
			Operation:  "csrf refresh",
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("courtside csrf refresh: parsing admin page: %w", err)
	}
	token, ok := doc.Find(csrfMetaSelector).Attr("content")
	if !ok || token == "" {
		return fmt.Errorf("courtside csrf refresh: no csrf-token meta tag on admin page")
	}

	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()

	logging.Info(logging.FromContext(ctx, c.logger), "courtside csrf token refreshed")
	return nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csrfToken
}

func (c *Client) logFailure(ctx context.Context, status int, body []byte) {
	logging.Warn(logging.FromContext(ctx, c.logger), "courtside request failed",
		logging.FieldStatusCode, status,
		"body", strings.TrimSpace(string(body)),
	)
}

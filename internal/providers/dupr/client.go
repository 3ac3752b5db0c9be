package dupr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dupr-sync-service/internal/domain"
	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/providers"
)

// Config controls how the DUPR client reaches the upstream API.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	ClubID     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the DUPR API: login, player search, player fetch and club
// member enrollment. All calls are single-shot; retry policy belongs to the
// decorators wrapping it.
type Client struct {
	baseURL    string
	clubID     string
	httpClient httpDoer
	logger     *slog.Logger
	tokens     *tokenSource
}

// NewClient constructs a DUPR client with the provided configuration.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		clubID:     cfg.ClubID,
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		logger:     cfg.Logger,
	}
	c.tokens = &tokenSource{
		username:     cfg.Username,
		password:     cfg.Password,
		now:          time.Now,
		authenticate: c.Authenticate,
	}
	return c
}

// Authenticate performs a single login call. Success is strictly a 200 with
// a non-empty token in the body; anything else is an *AuthError. Transport
// faults propagate as-is.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload := loginRequest{Email: c.tokens.username, Password: c.tokens.password}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logFailure(ctx, "login", resp.StatusCode, respBody)
		return "", &AuthError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var decoded loginResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("dupr login: decoding response: %w", err)
	}
	if decoded.Result.AccessToken == "" {
		c.logFailure(ctx, "login", resp.StatusCode, respBody)
		return "", &AuthError{StatusCode: resp.StatusCode, Body: "no access token in response"}
	}

	logging.Info(logging.FromContext(ctx, c.logger), "dupr authentication successful")
	return decoded.Result.AccessToken, nil
}

// EnsureAuth resolves a token up front so a batch can abort before touching
// any row when credentials are absent or rejected.
func (c *Client) EnsureAuth(ctx context.Context) error {
	_, err := c.tokens.Token(ctx)
	return err
}

// SearchPlayers runs a global name search. Zero hits return an empty slice;
// any transport or upstream failure returns an error so callers can tell
// "service error" from "nobody matched".
func (c *Client) SearchPlayers(ctx context.Context, firstName, lastName string) ([]domain.Candidate, error) {
	payload := searchRequest{
		Filter: searchFilter{
			RadiusInMeters: searchRadiusMeters,
			Lat:            searchAnchorLat,
			Lng:            searchAnchorLng,
		},
		IncludeUnclaimedPlayers: true,
		Address: searchAddress{
			Latitude:  searchAnchorLat,
			Longitude: searchAnchorLng,
		},
		Offset: 0,
		Limit:  searchLimit,
		Query:  strings.TrimSpace(firstName + " " + lastName),
	}

	var decoded searchResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+searchPath, payload, &decoded, "search"); err != nil {
		return nil, err
	}
	return mapHits(decoded.Result.Hits), nil
}

// FetchPlayerByID loads one player via the canonical id, the fallback used
// when a search hit lacks a numeric id.
func (c *Client) FetchPlayerByID(ctx context.Context, canonicalID string) (domain.Candidate, error) {
	var decoded playerResponse
	url := c.baseURL + playerPath + canonicalID
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &decoded, "fetch player"); err != nil {
		return domain.Candidate{}, err
	}
	return mapHit(decoded.Result), nil
}

// EnrollMembers bulk-adds players to the club by numeric id. A 200 or an
// already-invited body both count as applied; everything else is an error.
func (c *Client) EnrollMembers(ctx context.Context, numericIDs []int64) error {
	url := c.baseURL + "/club/" + c.clubID + "/members/v1.0/add"
	status, body, err := c.doRaw(ctx, http.MethodPut, url, enrollRequest{UserIDs: numericIDs})
	if err != nil {
		return err
	}

	logging.Info(logging.FromContext(ctx, c.logger), "dupr enroll response",
		logging.FieldStatusCode, status,
		logging.FieldClubID, c.clubID,
		logging.FieldCount, len(numericIDs),
	)

	if status == http.StatusOK {
		return nil
	}
	if enrollAlreadyApplied(string(body)) {
		return nil
	}
	c.logFailure(ctx, "enroll", status, body)
	return c.statusError("enroll", status, body)
}

// EnrollMembersByEmail invites players by name/email via the bulk endpoint.
// Not used by the row pipeline; kept for operator-driven bulk invites.
func (c *Client) EnrollMembersByEmail(ctx context.Context, members []MemberInvite) error {
	url := c.baseURL + "/club/" + c.clubID + "/members/v1.0/multiple/add"
	status, body, err := c.doRaw(ctx, http.MethodPut, url, enrollByEmailRequest{AddMembers: members})
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	c.logFailure(ctx, "enroll by email", status, body)
	return c.statusError("enroll by email", status, body)
}

// enrollAlreadyApplied is the single place the upstream's free-text
// idempotency signal is interpreted.
func enrollAlreadyApplied(body string) bool {
	return strings.Contains(strings.ToLower(body), alreadyInvitedMarker)
}

func (c *Client) doJSON(ctx context.Context, method, url string, payload any, out any, op string) error {
	status, body, err := c.doRaw(ctx, method, url, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		c.logFailure(ctx, op, status, body)
		return c.statusError(op, status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("dupr %s: decoding response: %w", op, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, url string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, err
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Stale token; the next call re-authenticates.
		c.tokens.Invalidate()
	}
	return resp.StatusCode, body, nil
}

func (c *Client) statusError(op string, status int, body []byte) error {
	trimmed := strings.TrimSpace(string(body))
	if status == http.StatusTooManyRequests {
		return &providers.RateLimitError{
			Provider:   Name,
			StatusCode: status,
			Message:    "dupr rate limited",
		}
	}
	return &providers.UpstreamError{Provider: Name, Operation: op, StatusCode: status, Body: trimmed}
}

func (c *Client) logFailure(ctx context.Context, op string, status int, body []byte) {
	logging.Warn(logging.FromContext(ctx, c.logger), "dupr "+op+" failed",
		logging.FieldStatusCode, status,
		"body", strings.TrimSpace(string(body)),
	)
}

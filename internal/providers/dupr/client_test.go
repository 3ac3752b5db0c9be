package dupr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"dupr-sync-service/internal/providers"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(rt roundTripperFunc) *Client {
	return NewClient(Config{
		BaseURL:    "http://example.com",
		Username:   "ops@example.com",
		Password:   "secret",
		ClubID:     "5996780750",
		HTTPClient: &http.Client{Transport: rt},
	})
}

const loginBody = `{"result":{"accessToken":"token-abc"}}`

func TestAuthenticateSuccess(t *testing.T) {
	var captured map[string]string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/auth/v1.0/login/" {
			t.Fatalf("expected login path, got %s", req.URL.Path)
		}
		body, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("failed decoding login payload: %v", err)
		}
		return jsonResponse(http.StatusOK, loginBody), nil
	})

	token, err := client.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if token != "token-abc" {
		t.Fatalf("unexpected token %q", token)
	}
	if captured["email"] != "ops@example.com" || captured["password"] != "secret" {
		t.Fatalf("unexpected login payload: %v", captured)
	}
}

func TestAuthenticateRejectedStatus(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"message":"bad credentials"}`), nil
	})

	_, err := client.Authenticate(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", authErr.StatusCode)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"result":{}}`), nil
	})

	_, err := client.Authenticate(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError for empty token, got %v", err)
	}
}

func TestEnsureAuthWithoutCredentials(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://example.com"})
	if err := client.EnsureAuth(context.Background()); !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("expected ErrCredentialsMissing, got %v", err)
	}
}

func TestSearchPlayersBuildsGlobalQuery(t *testing.T) {
	var logins, searches int
	var captured searchRequest

	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/auth/v1.0/login/":
			logins++
			return jsonResponse(http.StatusOK, loginBody), nil
		case "/player/v1.0/search":
			searches++
			if got := req.Header.Get("Authorization"); got != "Bearer token-abc" {
				t.Fatalf("expected bearer token, got %q", got)
			}
			body, _ := io.ReadAll(req.Body)
			if err := json.Unmarshal(body, &captured); err != nil {
				t.Fatalf("failed decoding search payload: %v", err)
			}
			return jsonResponse(http.StatusOK, `{
				"result": {"hits": [
					{"id": 4438478, "duprId": "94VNXK", "fullName": "Jane Smith",
					 "email": "jane@x.com", "phone": "3035550101", "age": 34, "gender": "F",
					 "ratings": {"doubles": "3.842", "singles": "NR", "doublesVerified": true}}
				]}
			}`), nil
		default:
			t.Fatalf("unexpected path %s", req.URL.Path)
			return nil, nil
		}
	})

	hits, err := client.SearchPlayers(context.Background(), "Jane", "Smith")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if captured.Query != "Jane Smith" {
		t.Fatalf("expected query 'Jane Smith', got %q", captured.Query)
	}
	if captured.Filter.RadiusInMeters != searchRadiusMeters {
		t.Fatalf("expected global radius, got %d", captured.Filter.RadiusInMeters)
	}
	if !captured.IncludeUnclaimedPlayers {
		t.Fatal("expected includeUnclaimedPlayers to be set")
	}
	if captured.Offset != 0 || captured.Limit != searchLimit {
		t.Fatalf("unexpected pagination: offset=%d limit=%d", captured.Offset, captured.Limit)
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	hit := hits[0]
	if hit.NumericID != 4438478 || hit.CanonicalID != "94VNXK" {
		t.Fatalf("unexpected ids: %+v", hit)
	}
	if hit.Ratings.Doubles != "3.842" || !hit.Ratings.DoublesVerified {
		t.Fatalf("unexpected ratings: %+v", hit.Ratings)
	}

	// Second search reuses the cached token.
	if _, err := client.SearchPlayers(context.Background(), "Jane", "Smith"); err != nil {
		t.Fatalf("second search failed: %v", err)
	}
	if logins != 1 {
		t.Fatalf("expected a single login, got %d", logins)
	}
	if searches != 2 {
		t.Fatalf("expected 2 searches, got %d", searches)
	}
}

func TestSearchPlayersZeroHits(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/auth/v1.0/login/" {
			return jsonResponse(http.StatusOK, loginBody), nil
		}
		return jsonResponse(http.StatusOK, `{"result":{"hits":[]}}`), nil
	})

	hits, err := client.SearchPlayers(context.Background(), "No", "Body")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", hits)
	}
}

func TestSearchPlayersUpstreamFailure(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/auth/v1.0/login/" {
			return jsonResponse(http.StatusOK, loginBody), nil
		}
		return jsonResponse(http.StatusInternalServerError, "oops"), nil
	})

	_, err := client.SearchPlayers(context.Background(), "Jane", "Smith")
	upErr, ok := providers.AsUpstreamError(err)
	if !ok {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusInternalServerError || upErr.Body != "oops" {
		t.Fatalf("unexpected error details: %+v", upErr)
	}
}

func TestSearchPlayersRateLimited(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path == "/auth/v1.0/login/" {
			return jsonResponse(http.StatusOK, loginBody), nil
		}
		return jsonResponse(http.StatusTooManyRequests, "slow down"), nil
	})

	_, err := client.SearchPlayers(context.Background(), "Jane", "Smith")
	if _, ok := providers.AsRateLimitError(err); !ok {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
}

func TestFetchPlayerByID(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/auth/v1.0/login/":
			return jsonResponse(http.StatusOK, loginBody), nil
		case "/player/v1.0/ABC123":
			if req.Method != http.MethodGet {
				t.Fatalf("expected GET, got %s", req.Method)
			}
			return jsonResponse(http.StatusOK, `{"result":{"id": 777, "duprId": "ABC123", "fullName": "Jane Smith"}}`), nil
		default:
			t.Fatalf("unexpected path %s", req.URL.Path)
			return nil, nil
		}
	})

	candidate, err := client.FetchPlayerByID(context.Background(), "ABC123")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if candidate.NumericID != 777 || candidate.CanonicalID != "ABC123" {
		t.Fatalf("unexpected candidate: %+v", candidate)
	}
}

func TestEnrollMembersOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"http 200", http.StatusOK, `{"result":"ok"}`, false},
		{"conflict already invited", http.StatusConflict, "Player already invited to club", false},
		{"mixed case marker", http.StatusBadRequest, "user ALREADY Invited earlier", false},
		{"plain rejection", http.StatusBadRequest, "invalid user ids", true},
		{"server error", http.StatusInternalServerError, "boom", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedIDs enrollRequest
			client := newTestClient(func(req *http.Request) (*http.Response, error) {
				switch req.URL.Path {
				case "/auth/v1.0/login/":
					return jsonResponse(http.StatusOK, loginBody), nil
				case "/club/5996780750/members/v1.0/add":
					if req.Method != http.MethodPut {
						t.Fatalf("expected PUT, got %s", req.Method)
					}
					body, _ := io.ReadAll(req.Body)
					_ = json.Unmarshal(body, &capturedIDs)
					return jsonResponse(tt.status, tt.body), nil
				default:
					t.Fatalf("unexpected path %s", req.URL.Path)
					return nil, nil
				}
			})

			err := client.EnrollMembers(context.Background(), []int64{4438478})
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if len(capturedIDs.UserIDs) != 1 || capturedIDs.UserIDs[0] != 4438478 {
				t.Fatalf("unexpected enroll payload: %+v", capturedIDs)
			}
		})
	}
}

func TestEnrollMembersByEmail(t *testing.T) {
	var captured enrollByEmailRequest
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch req.URL.Path {
		case "/auth/v1.0/login/":
			return jsonResponse(http.StatusOK, loginBody), nil
		case "/club/5996780750/members/v1.0/multiple/add":
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &captured)
			return jsonResponse(http.StatusOK, "{}"), nil
		default:
			t.Fatalf("unexpected path %s", req.URL.Path)
			return nil, nil
		}
	})

	err := client.EnrollMembersByEmail(context.Background(), []MemberInvite{{FullName: "Jane Smith", Email: "jane@x.com"}})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(captured.AddMembers) != 1 || captured.AddMembers[0].Email != "jane@x.com" {
		t.Fatalf("unexpected payload: %+v", captured)
	}
}

func TestEnrollAlreadyAppliedPredicate(t *testing.T) {
	if !enrollAlreadyApplied("Player already invited to club") {
		t.Fatal("expected match")
	}
	if !enrollAlreadyApplied(`{"message":"ALREADY INVITED"}`) {
		t.Fatal("expected case-insensitive match")
	}
	if enrollAlreadyApplied("invitation pending") {
		t.Fatal("expected no match")
	}
}

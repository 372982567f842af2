package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/infrastructure/oauth"
)

type stubProvider struct {
	exchangeFn func(ctx context.Context, code, verifier string) (domain.ExternalProfile, string, error)
}

func (p *stubProvider) Name() string { return domain.ProviderGoogle }

func (p *stubProvider) AuthCodeURL(state, verifier string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state) + "&code_challenge=" + url.QueryEscape(oauth2.S256ChallengeFromVerifier(verifier))
}

func (p *stubProvider) Exchange(ctx context.Context, code, verifier string) (domain.ExternalProfile, string, error) {
	return p.exchangeFn(ctx, code, verifier)
}

var testRedirects = OAuthRedirects{Success: "/assignment/index.html#!/profile", Failure: "/assignment/index.html#!/login"}

// startFlow runs Redirect and returns the state plus the cookies it set.
func startFlow(t *testing.T, h *OAuthHandler) (string, []*http.Cookie) {
	t.Helper()
	c, rec := newTestContext(http.MethodGet, "/auth/google", nil)
	if err := h.Redirect(c); err != nil {
		t.Fatalf("redirect error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	if err != nil {
		t.Fatalf("bad location: %v", err)
	}
	return loc.Query().Get("state"), rec.Result().Cookies()
}

func callback(t *testing.T, h *OAuthHandler, query string, cookies []*http.Cookie) (*httptest.ResponseRecorder, error) {
	t.Helper()
	c, rec := newTestContext(http.MethodGet, "/auth/google/callback?"+query, nil)
	for _, ck := range cookies {
		c.Request().AddCookie(ck)
	}
	return rec, h.Callback(c)
}

func TestOAuthHandler_Callback_Success(t *testing.T) {
	var gotVerifier string
	provider := &stubProvider{
		exchangeFn: func(_ context.Context, code, verifier string) (domain.ExternalProfile, string, error) {
			gotVerifier = verifier
			return domain.ExternalProfile{Provider: "google", ID: "g-1", Email: "jane@example.com"}, "tok", nil
		},
	}
	auth := &stubAuthService{
		externalFn: func(_ context.Context, p domain.ExternalProfile, token string) (*domain.User, error) {
			if p.ID != "g-1" || token != "tok" {
				t.Fatalf("unexpected profile %+v / %s", p, token)
			}
			return &domain.User{ID: "u9", Username: "jane"}, nil
		},
	}
	h := NewOAuthHandler(provider, auth, testCookies, testRedirects, nopLog)

	state, cookies := startFlow(t, h)
	rec, err := callback(t, h, "state="+url.QueryEscape(state)+"&code=abc", cookies)
	if err != nil {
		t.Fatalf("callback error: %v", err)
	}

	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != testRedirects.Success {
		t.Fatalf("expected success redirect, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	var pkce string
	for _, ck := range cookies {
		if ck.Name == oauth.PKCECookieName {
			pkce = ck.Value
		}
	}
	if gotVerifier == "" || gotVerifier != pkce {
		t.Fatalf("exchange must receive the PKCE verifier")
	}
	if len(auth.logins) != 1 || auth.logins[0] != "u9/google" {
		t.Fatalf("expected google login, got %v", auth.logins)
	}
	if ck := sessionCookie(rec); ck == nil || ck.Value != "handle-u9" {
		t.Fatalf("expected session cookie, got %+v", ck)
	}
}

func TestOAuthHandler_Callback_StateMismatch(t *testing.T) {
	provider := &stubProvider{
		exchangeFn: func(context.Context, string, string) (domain.ExternalProfile, string, error) {
			t.Fatalf("exchange must not run on state mismatch")
			return domain.ExternalProfile{}, "", nil
		},
	}
	h := NewOAuthHandler(provider, &stubAuthService{}, testCookies, testRedirects, nopLog)

	_, cookies := startFlow(t, h)
	rec, err := callback(t, h, "state=forged&code=abc", cookies)
	if err != nil {
		t.Fatalf("callback error: %v", err)
	}
	if rec.Header().Get(echo.HeaderLocation) != testRedirects.Failure {
		t.Fatalf("expected failure redirect, got %q", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestOAuthHandler_Callback_ExchangeFails(t *testing.T) {
	provider := &stubProvider{
		exchangeFn: func(context.Context, string, string) (domain.ExternalProfile, string, error) {
			return domain.ExternalProfile{}, "", errors.New("invalid_grant")
		},
	}
	h := NewOAuthHandler(provider, &stubAuthService{}, testCookies, testRedirects, nopLog)

	state, cookies := startFlow(t, h)
	rec, err := callback(t, h, "state="+url.QueryEscape(state)+"&code=abc", cookies)
	if err != nil {
		t.Fatalf("callback error: %v", err)
	}
	if rec.Header().Get(echo.HeaderLocation) != testRedirects.Failure {
		t.Fatalf("expected failure redirect, got %q", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestOAuthHandler_Callback_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("network down")
	provider := &stubProvider{
		exchangeFn: func(context.Context, string, string) (domain.ExternalProfile, string, error) {
			return domain.ExternalProfile{Provider: "google", ID: "g-1", Email: "jane@example.com"}, "tok", nil
		},
	}
	auth := &stubAuthService{
		externalFn: func(context.Context, domain.ExternalProfile, string) (*domain.User, error) { return nil, storeErr },
	}
	h := NewOAuthHandler(provider, auth, testCookies, testRedirects, nopLog)

	state, cookies := startFlow(t, h)
	if _, err := callback(t, h, "state="+url.QueryEscape(state)+"&code=abc", cookies); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestOAuthHandler_Callback_UsernameTakenRedirectsToFailure(t *testing.T) {
	provider := &stubProvider{
		exchangeFn: func(context.Context, string, string) (domain.ExternalProfile, string, error) {
			return domain.ExternalProfile{Provider: "google", ID: "g-2", Email: "jane@gmail.com"}, "tok", nil
		},
	}
	auth := &stubAuthService{
		externalFn: func(context.Context, domain.ExternalProfile, string) (*domain.User, error) {
			dup := &domain.ConstraintError{Detail: `E11000 duplicate key error dup key: { username: "jane" }`}
			return nil, fmt.Errorf("provision external user: %w", dup)
		},
	}
	h := NewOAuthHandler(provider, auth, testCookies, testRedirects, nopLog)

	state, cookies := startFlow(t, h)
	rec, err := callback(t, h, "state="+url.QueryEscape(state)+"&code=abc", cookies)
	if err != nil {
		t.Fatalf("callback error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != testRedirects.Failure {
		t.Fatalf("expected failure redirect, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if len(auth.logins) != 0 {
		t.Fatalf("no session may be opened, got %v", auth.logins)
	}
	if ck := sessionCookie(rec); ck != nil && ck.Value != "" {
		t.Fatalf("unexpected session cookie %+v", ck)
	}
}

package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/userhub/user-service/internal/core/domain"
	"github.com/userhub/user-service/internal/core/ports"
	"github.com/userhub/user-service/internal/infrastructure/session"
)

type stubUserService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	getFn      func(ctx context.Context, id string) (*domain.User, error)
	listFn     func(ctx context.Context) ([]*domain.User, error)
	credsFn    func(ctx context.Context, username, password string) (*domain.User, error)
	takenFn    func(ctx context.Context, username string) (bool, error)
	updateFn   func(ctx context.Context, id string, ch domain.UserChanges) (domain.WriteResult, error)
	deleteFn   func(ctx context.Context, id string) (domain.WriteResult, error)
}

func (s *stubUserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) FindByCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	return s.credsFn(ctx, username, password)
}

func (s *stubUserService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.takenFn(ctx, username)
}

func (s *stubUserService) Update(ctx context.Context, id string, ch domain.UserChanges) (domain.WriteResult, error) {
	return s.updateFn(ctx, id, ch)
}

func (s *stubUserService) Delete(ctx context.Context, id string) (domain.WriteResult, error) {
	return s.deleteFn(ctx, id)
}

// stubAuthService records logins and logouts; authentication is scripted.
type stubAuthService struct {
	localFn    func(ctx context.Context, username, password string) (*domain.User, error)
	externalFn func(ctx context.Context, p domain.ExternalProfile, token string) (*domain.User, error)
	loginErr   error

	logins  []string
	logouts []string
}

func (s *stubAuthService) Serialize(u *domain.User) string { return u.ID }

func (s *stubAuthService) Deserialize(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrSessionInvalid
}

func (s *stubAuthService) AuthenticateLocal(ctx context.Context, username, password string) (*domain.User, error) {
	return s.localFn(ctx, username, password)
}

func (s *stubAuthService) AuthenticateExternal(ctx context.Context, p domain.ExternalProfile, token string) (*domain.User, error) {
	return s.externalFn(ctx, p, token)
}

func (s *stubAuthService) Login(_ context.Context, u *domain.User, strategy string) (string, error) {
	if s.loginErr != nil {
		return "", s.loginErr
	}
	s.logins = append(s.logins, u.ID+"/"+strategy)
	return "handle-" + u.ID, nil
}

func (s *stubAuthService) Resolve(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrSessionInvalid
}

func (s *stubAuthService) Logout(_ context.Context, handle string, _ *domain.User) error {
	s.logouts = append(s.logouts, handle)
	return nil
}

var testCookies = SessionCookies{Options: session.CookieOptions{Name: "sid"}}

func newTestContext(method, target string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}

var nopLog = zerolog.Nop()

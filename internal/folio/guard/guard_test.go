package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/aisa-it/folio/internal/folio/client"
	sessionscache "github.com/aisa-it/folio/internal/folio/sessions-cache"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		path string
		want PageClass
	}{
		{"/", PublicPage},
		{"/blog/hello", PublicPage},
		{"/login", AuthPage},
		{"/login/", AuthPage},
		{"/en/register", AuthPage},
		{"/zh/forgot-password", AuthPage},
		{"/dashboard", ProtectedPage},
		{"/dashboard/posts/new", ProtectedPage},
		{"/zh/admin/users", ProtectedPage},
		{"/user", ProtectedPage},
		{"/users", PublicPage},
		{"/dashboards", PublicPage},
		{"/de/dashboard", PublicPage},
		{"/en", PublicPage},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Classify(tt.path))
		})
	}
}

func TestNewRules(t *testing.T) {
	rules := NewRules([]string{"ru"}, "/signin", "/cabinet")
	assert.Equal(t, AuthPage, rules.Classify("/ru/signin"))
	assert.Equal(t, ProtectedPage, rules.Classify("/cabinet/posts"))
	assert.Equal(t, ProtectedPage, rules.Classify("/dashboard"))
	assert.Equal(t, PublicPage, rules.Classify("/en/dashboard"))
}

func TestDecide(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name       string
		rawURL     string
		hasSession bool
		want       Decision
	}{
		{"auth page with session", "/login", true, Decision{Class: AuthPage, Redirect: true, Location: "/dashboard"}},
		{"auth page without session", "/login", false, Decision{Class: AuthPage}},
		{"localized auth page with session", "/zh/login", true, Decision{Class: AuthPage, Redirect: true, Location: "/zh/dashboard"}},
		{"protected without session", "/dashboard/posts?page=2", false, Decision{Class: ProtectedPage, Redirect: true, Location: "/login?redirect=%2Fdashboard%2Fposts%3Fpage%3D2"}},
		{"localized protected without session", "/en/admin", false, Decision{Class: ProtectedPage, Redirect: true, Location: "/en/login?redirect=%2Fen%2Fadmin"}},
		{"protected with session", "/dashboard", true, Decision{Class: ProtectedPage}},
		{"public without session", "/blog/a", false, Decision{Class: PublicPage}},
		{"public with session", "/blog/a", true, Decision{Class: PublicPage}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rules.Decide(u, tt.hasSession))
		})
	}
}

type fakeSessionClient struct {
	calls int
	ok    bool
	err   error
	creds client.Credentials
}

func (f *fakeSessionClient) CheckSession(ctx context.Context) (bool, error) {
	f.calls++
	f.creds = client.CredentialsFromContext(ctx)
	return f.ok, f.err
}

func TestUpstreamChecker(t *testing.T) {
	fc := &fakeSessionClient{ok: true}
	checker := UpstreamChecker{Client: fc}

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.False(t, checker.HasSession(r))
	assert.Zero(t, fc.calls)

	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "t"})
	assert.True(t, checker.HasSession(r))
	assert.Equal(t, 1, fc.calls)
	require.Len(t, fc.creds.Cookies, 1)
	assert.Equal(t, "t", fc.creds.Cookies[0].Value)

	fc.err = errors.New("down")
	assert.False(t, checker.HasSession(r))
	assert.Equal(t, 2, fc.calls)
}

func TestUpstreamCheckerCache(t *testing.T) {
	fc := &fakeSessionClient{ok: true}
	checker := UpstreamChecker{Client: fc, Cache: sessionscache.NewSessionsCache(time.Minute)}

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "t"})
	assert.True(t, checker.HasSession(r))
	assert.True(t, checker.HasSession(r))
	assert.Equal(t, 1, fc.calls)

	other := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	other.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "u"})
	fc.ok = false
	assert.False(t, checker.HasSession(other))
	assert.Equal(t, 2, fc.calls)

	fc.err = errors.New("down")
	assert.False(t, checker.HasSession(other))
	assert.True(t, checker.HasSession(r))
	assert.Equal(t, 2, fc.calls)
}

func signToken(t *testing.T, key any, method jwt.SigningMethod, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{"sub": "user", "exp": exp.Unix()})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestJWTChecker(t *testing.T) {
	secret := []byte("secret")
	checker := JWTChecker{Secret: secret}

	valid := signToken(t, secret, jwt.SigningMethodHS256, time.Now().Add(time.Hour))
	expired := signToken(t, secret, jwt.SigningMethodHS256, time.Now().Add(-time.Hour))
	foreign := signToken(t, []byte("other"), jwt.SigningMethodHS256, time.Now().Add(time.Hour))
	unsigned := signToken(t, jwt.UnsafeAllowNoneSignatureType, jwt.SigningMethodNone, time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  bool
	}{
		{"no token", func(r *http.Request) {}, false},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: valid}) }, true},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, true},
		{"expired", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: expired}) }, false},
		{"foreign secret", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) }, false},
		{"none algorithm", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+unsigned) }, false},
		{"garbage", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "abc"}) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			assert.Equal(t, tt.want, checker.HasSession(r))
		})
	}
}

func TestCookieChecker(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, CookieChecker{}.HasSession(r))

	r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r"})
	assert.True(t, CookieChecker{}.HasSession(r))
	assert.False(t, CookieChecker{Names: []string{"session"}}.HasSession(r))
}

func TestMiddleware(t *testing.T) {
	calls := 0
	checker := SessionCheckerFunc(func(r *http.Request) bool {
		calls++
		_, err := r.Cookie(AccessTokenCookie)
		return err == nil
	})

	e := echo.New()
	e.Use(Middleware(Config{Rules: DefaultRules(), Checker: checker}))
	e.GET("/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "page")
	})

	do := func(path string, withSession bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if withSession {
			req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "t"})
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do("/blog/a", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, calls)

	rec = do("/dashboard", false)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fdashboard", rec.Header().Get("Location"))
	assert.Equal(t, 1, calls)

	rec = do("/en/login", true)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/en/dashboard", rec.Header().Get("Location"))

	rec = do("/dashboard", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSession(t *testing.T) {
	e := echo.New()
	e.Use(RequireSession(CookieChecker{}))
	e.GET("/api/drafts/", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/drafts/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":1001,"error":"session is required","ru_error":"Требуется авторизация"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/drafts/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "t"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

package guard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aisa-it/folio/internal/folio/client"
	sessionscache "github.com/aisa-it/folio/internal/folio/sessions-cache"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// SessionChecker отвечает, есть ли у запроса действующая сессия. Ошибка проверки означает отсутствие сессии.
type SessionChecker interface {
	HasSession(r *http.Request) bool
}

type SessionCheckerFunc func(r *http.Request) bool

func (f SessionCheckerFunc) HasSession(r *http.Request) bool {
	return f(r)
}

// SessionClient - проверка сессии на стороне API.
type SessionClient interface {
	CheckSession(ctx context.Context) (bool, error)
}

// UpstreamChecker проверяет сессию одним запросом к API с cookie и Authorization пользователя.
// С Cache результат для тех же учётных данных переиспользуется, пока не устарел.
type UpstreamChecker struct {
	Client SessionClient
	Cache  *sessionscache.SessionsCache
}

func (u UpstreamChecker) HasSession(r *http.Request) bool {
	creds := client.CredentialsFromRequest(r)
	if len(creds.Cookies) == 0 && creds.Authorization == "" {
		return false
	}

	key := creds.Fingerprint()
	if u.Cache != nil {
		if has, ok := u.Cache.Get(key); ok {
			return has
		}
	}

	ok, err := u.Client.CheckSession(client.WithCredentials(r.Context(), creds))
	if err != nil {
		slog.Warn("Check session", "err", err)
		return false
	}
	if u.Cache != nil {
		u.Cache.Store(key, ok)
	}
	return ok
}

// JWTChecker проверяет подпись и срок действия access-токена локально. Допускаются только HMAC-подписи.
type JWTChecker struct {
	Secret []byte
}

func (j JWTChecker) HasSession(r *http.Request) bool {
	tokenString := bearerToken(r)
	if tokenString == "" {
		if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
			tokenString = cookie.Value
		}
	}
	if tokenString == "" {
		return false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		slog.Debug("Invalid access token", "err", err)
		return false
	}
	return token.Valid
}

// CookieChecker считает сессию активной, если задана непустая cookie с одним из имён.
type CookieChecker struct {
	Names []string
}

func (c CookieChecker) HasSession(r *http.Request) bool {
	names := c.Names
	if len(names) == 0 {
		names = []string{AccessTokenCookie, RefreshTokenCookie}
	}
	for _, name := range names {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	schema, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(strings.TrimSpace(schema), "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package client

import (
	"context"
	"net/http"
	"strings"
)

// Credentials - учётные данные пользователя, которые пробрасываются в API контента.
type Credentials struct {
	Cookies       []*http.Cookie
	Authorization string
}

type credentialsKey struct{}

func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

func CredentialsFromContext(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsKey{}).(Credentials)
	return creds
}

// CredentialsFromRequest берёт cookie и заголовок Authorization входящего запроса.
func CredentialsFromRequest(r *http.Request) Credentials {
	return Credentials{
		Cookies:       r.Cookies(),
		Authorization: r.Header.Get("Authorization"),
	}
}

func (c Credentials) apply(req *http.Request) {
	for _, cookie := range c.Cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	if c.Authorization != "" {
		req.Header.Set("Authorization", c.Authorization)
	}
}

// Fingerprint отличает учётные данные разных пользователей в ключах дедупликации и кеша.
func (c Credentials) Fingerprint() string {
	var sb strings.Builder
	sb.WriteString(c.Authorization)
	for _, cookie := range c.Cookies {
		sb.WriteByte(';')
		sb.WriteString(cookie.Name)
		sb.WriteByte('=')
		sb.WriteString(cookie.Value)
	}
	return sb.String()
}

// Пакет guard классифицирует запрошенные страницы и перенаправляет пользователя в зависимости от наличия сессии.
//
// Основные возможности:
//   - Классификация пути: страница входа, защищённая страница или публичная, с учётом префикса локали.
//   - Решение о перенаправлении: со страницы входа при активной сессии, на вход при её отсутствии.
//   - Проверка сессии одним запросом к API, локальной проверкой JWT или по наличию cookie.
//   - Middleware для echo: перенаправления для страниц и 401 для API.
package guard

import (
	"net/url"
	"slices"
	"strings"
)

type PageClass int

const (
	PublicPage PageClass = iota
	AuthPage
	ProtectedPage
)

func (c PageClass) String() string {
	switch c {
	case AuthPage:
		return "auth"
	case ProtectedPage:
		return "protected"
	}
	return "public"
}

// Rules - правила классификации путей и адреса перенаправлений.
type Rules struct {
	Locales           []string
	AuthPages         []string
	ProtectedPrefixes []string
	LoginPath         string
	DashboardPath     string
}

func DefaultRules() Rules {
	return Rules{
		Locales:           []string{"en", "zh"},
		AuthPages:         []string{"/login", "/register", "/forgot-password"},
		ProtectedPrefixes: []string{"/dashboard", "/admin", "/user"},
		LoginPath:         "/login",
		DashboardPath:     "/dashboard",
	}
}

// NewRules строит правила по умолчанию с заданными локалями и путями входа и кабинета.
func NewRules(locales []string, loginPath, dashboardPath string) Rules {
	r := DefaultRules()
	if len(locales) > 0 {
		r.Locales = locales
	}
	if loginPath != "" {
		r.LoginPath = loginPath
		if !slices.Contains(r.AuthPages, loginPath) {
			r.AuthPages = append(r.AuthPages, loginPath)
		}
	}
	if dashboardPath != "" {
		r.DashboardPath = dashboardPath
		if !slices.Contains(r.ProtectedPrefixes, dashboardPath) {
			r.ProtectedPrefixes = append(r.ProtectedPrefixes, dashboardPath)
		}
	}
	return r
}

// splitLocale отделяет префикс локали: "/en/dashboard" -> "en", "/dashboard".
func (r Rules) splitLocale(path string) (string, string) {
	if path == "" {
		path = "/"
	}
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first != "" && slices.Contains(r.Locales, first) {
		return first, "/" + rest
	}
	return "", path
}

func (r Rules) Classify(path string) PageClass {
	_, path = r.splitLocale(path)
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	if slices.Contains(r.AuthPages, path) {
		return AuthPage
	}
	for _, prefix := range r.ProtectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return ProtectedPage
		}
	}
	return PublicPage
}

// Decision - результат проверки страницы. Location задан только при Redirect.
type Decision struct {
	Class    PageClass
	Redirect bool
	Location string
}

// Decide решает, пропустить запрос или перенаправить. Локаль исходного пути сохраняется в адресе перенаправления,
// а при перенаправлении на вход исходный адрес передаётся в параметре redirect.
func (r Rules) Decide(u *url.URL, hasSession bool) Decision {
	class := r.Classify(u.Path)
	locale, _ := r.splitLocale(u.Path)

	switch {
	case class == AuthPage && hasSession:
		return Decision{Class: class, Redirect: true, Location: localized(locale, r.DashboardPath)}
	case class == ProtectedPage && !hasSession:
		q := url.Values{}
		q.Set("redirect", u.RequestURI())
		return Decision{Class: class, Redirect: true, Location: localized(locale, r.LoginPath) + "?" + q.Encode()}
	}
	return Decision{Class: class}
}

func localized(locale, path string) string {
	if locale == "" {
		return path
	}
	return "/" + locale + path
}

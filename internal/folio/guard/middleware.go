package guard

import (
	"net/http"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	Rules   Rules
	Checker SessionChecker
	Skipper middleware.Skipper
}

// Middleware перенаправляет запросы страниц по решению Rules.Decide. Сессия проверяется только
// для страниц входа и защищённых страниц.
func Middleware(config Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}

			if config.Rules.Classify(req.URL.Path) == PublicPage {
				return next(c)
			}

			decision := config.Rules.Decide(req.URL, config.Checker.HasSession(req))
			if decision.Redirect {
				return c.Redirect(http.StatusTemporaryRedirect, decision.Location)
			}
			return next(c)
		}
	}
}

// RequireSession отвечает 401 на запросы API без сессии.
func RequireSession(checker SessionChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}
			if !checker.HasSession(c.Request()) {
				err := apierrors.ErrSessionRequired
				return c.JSON(err.StatusCode, err)
			}
			return next(c)
		}
	}
}

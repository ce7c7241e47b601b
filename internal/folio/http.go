// Пакет folio - HTTP-сервис редактора блога и проектов. Он открывает сессии редактора черновиков поверх REST API контента,
// отдаёт рендер документов в HTML и разбор HTML обратно в документ, а также защищает страницы фронта по наличию сессии.
//
// Основные возможности:
//   - API сессий редактора: открытие, загрузка, изменение контента и метаданных, проверка и сохранение.
//   - Рендер документа TipTap в безопасный HTML и разбор HTML в документ.
//   - Раздача фронта с перенаправлениями страниц входа и кабинета.
//   - Метрики запросов и итогов сохранения на отдельном порту.
package folio

// @title Folio editor API
// @version 1.0
// @description Draft editor backend for blog posts and projects.
// @BasePath /
import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aisa-it/folio/internal/folio/client"
	"github.com/aisa-it/folio/internal/folio/config"
	"github.com/aisa-it/folio/internal/folio/cronmanager"
	"github.com/aisa-it/folio/internal/folio/drafts"
	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/guard"
	sessionscache "github.com/aisa-it/folio/internal/folio/sessions-cache"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

//go:generate echo "Generate api errors docs"
//go:generate go run ../../cmd/docsgen/main.go -src apierrors/apierrors.go -out ../../docs/api_errors.md

const shutdownTimeout = 10 * time.Second

// APIClient - REST API контента: чтение и запись ресурсов и проверка сессии.
type APIClient interface {
	drafts.Services
	guard.SessionClient
}

type Services struct {
	cfg     *config.Config
	version string

	api      APIClient
	registry *drafts.Registry
	checker  guard.SessionChecker
	sessions *sessionscache.SessionsCache
	rules    guard.Rules

	metrics  *saveMetrics
	notifier drafts.Notifier
}

func NewServices(cfg *config.Config, version string, api APIClient) *Services {
	metrics := newSaveMetrics()
	sessions := sessionscache.NewSessionsCache(sessionscache.DefaultTTL)
	return &Services{
		cfg:      cfg,
		version:  version,
		api:      api,
		registry: drafts.NewRegistry(cfg.DraftSessionTTL()),
		checker:  newSessionChecker(cfg, api, sessions),
		sessions: sessions,
		rules:    guard.NewRules(cfg.Locales, cfg.LoginPath, cfg.DashboardPath),
		metrics:  metrics,
		notifier: drafts.MultiNotifier{drafts.LogNotifier{}, metrics},
	}
}

func newSessionChecker(cfg *config.Config, api guard.SessionClient, cache *sessionscache.SessionsCache) guard.SessionChecker {
	switch cfg.SessionCheck {
	case config.SessionCheckJWT:
		return guard.JWTChecker{Secret: []byte(cfg.SecretKey)}
	case config.SessionCheckCookie:
		return guard.CookieChecker{}
	default:
		return guard.UpstreamChecker{Client: api, Cache: cache}
	}
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Folio")
		return next(c)
	}
}

func isAPIPath(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// Echo собирает приложение со всеми маршрутами.
func (s *Services) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("5M"))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
	}))
	e.Use(echoprometheus.NewMiddleware(metricsNamespace))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return !isAPIPath(c)
		},
	}))

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	s.AddEditorServices(apiGroup)

	draftsGroup := apiGroup.Group("drafts/", guard.RequireSession(s.checker))
	s.AddDraftServices(draftsGroup)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, dto.VersionResponse{Version: s.version})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Front handler
	if s.cfg.FrontFilesPath != "" {
		slog.Info("Start front routing", "root", s.cfg.FrontFilesPath)
		e.Use(guard.Middleware(guard.Config{
			Rules:   s.rules,
			Checker: s.checker,
			Skipper: isAPIPath,
		}))
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:    s.cfg.FrontFilesPath,
			HTML5:   true,
			Skipper: isAPIPath,
		}))
	}

	return e
}

// cleanupSchedule - расписание очистки сессий: дважды за время жизни сессии, но не чаще раза в минуту.
func cleanupSchedule(ttl time.Duration) string {
	interval := max(ttl/2, time.Minute)
	return "@every " + interval.String()
}

func (s *Services) cleanDraftSessions() {
	if n := s.registry.Cleanup(); n > 0 {
		slog.Info("Clean idle editor sessions", "count", n)
	}
}

// Server запускает API и сервер метрик и останавливает их после отмены ctx.
func Server(ctx context.Context, cfg *config.Config, version string) error {
	api := client.New(cfg.APIURL,
		client.WithRetries(cfg.UpstreamRetries),
		client.WithTimeout(cfg.UpstreamTimeout()),
	)
	s := NewServices(cfg, version, api)

	for _, collector := range s.metrics.collectors() {
		if err := prometheus.Register(collector); err != nil {
			return err
		}
	}

	cronManager := cronmanager.NewCronManager(cronmanager.JobRegistry{
		"draft_sessions_clean": cronmanager.Job{
			Func:     s.cleanDraftSessions,
			Schedule: cleanupSchedule(cfg.DraftSessionTTL()),
		},
		"sessions_cache_clean": cronmanager.Job{
			Func:     func() { s.sessions.Cleanup() },
			Schedule: "@every 1m",
		},
	})
	if err := cronManager.LoadJobs(); err != nil {
		return err
	}
	cronManager.Start()
	defer func() {
		cronManager.Stop()
		s.registry.CloseAll()
	}()

	e := s.Echo()

	// Prometheus metrics
	metrics := echo.New()
	metrics.HideBanner = true
	metrics.GET("/metrics", echoprometheus.NewHandler())
	go func() {
		if err := metrics.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server fail", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down gracefully, press Ctrl+C again to force")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := metrics.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Metrics server shutdown", "err", err)
	}
	return e.Shutdown(shutdownCtx)
}

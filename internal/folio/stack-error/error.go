// Пакет stack_error добавляет к ошибкам вызовов API контента трассу мест вызова, контекст и сведения
// о запросе к вышестоящему API для логов.
//
// Основные возможности:
//   - Накопление трассы мест вызова при повторном оборачивании одной ошибки.
//   - Привязка метода, пути и HTTP-статуса запроса к API контента (Upstream).
//   - Единый набор атрибутов лога для обработчиков echo и фоновых операций редактора.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/labstack/echo/v4"
)

// Upstream - запрос к API контента, на котором возникла ошибка. Status = 0, если ответа не было.
type Upstream struct {
	Method string
	Path   string
	Status int
}

func (u Upstream) attr() slog.Attr {
	attrs := []any{slog.String("method", u.Method), slog.String("path", u.Path)}
	if u.Status != 0 {
		attrs = append(attrs, slog.Int("status", u.Status))
	}
	return slog.Group("upstream", attrs...)
}

type TrackerError struct {
	Context  map[string]any
	ErrStack []slog.Attr
	Upstream *Upstream
	cause    error
}

// TrackErrorStack оборачивает ошибку или дописывает место вызова в уже существующую трассу.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if errors.As(err, &te) {
		te.ErrStack = append(te.ErrStack, getCallerFile(err))
		return te
	}

	newTe := newTrackError(err)
	newTe.ErrStack = append(newTe.ErrStack, getCallerFile(err))
	return newTe
}

func newTrackError(err error) *TrackerError {
	return &TrackerError{
		Context:  make(map[string]any),
		ErrStack: make([]slog.Attr, 0),
		cause:    err,
	}
}

// AddContext не перезаписывает уже добавленный ключ: ближайший к источнику контекст важнее.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

// WithUpstream запоминает запрос к API контента. Как и AddContext, сохраняет первый записанный запрос.
func (te *TrackerError) WithUpstream(method, path string, status int) *TrackerError {
	if te.Upstream == nil {
		te.Upstream = &Upstream{Method: method, Path: path, Status: status}
	}
	return te
}

// Attrs возвращает атрибуты лога для ошибки: текст, код каталога, запрос к API, контекст и трассу.
func Attrs(err error) []any {
	if err == nil {
		return nil
	}
	attrs := []any{slog.String("err", err.Error())}

	var definedErr apierrors.DefinedError
	if errors.As(err, &definedErr) {
		attrs = append(attrs, slog.Int("code", definedErr.Code))
	}

	var te *TrackerError
	if !errors.As(err, &te) {
		return attrs
	}
	if te.Upstream != nil {
		attrs = append(attrs, te.Upstream.attr())
	}
	for k, v := range te.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if len(te.ErrStack) > 0 {
		attrs = append(attrs, slog.Any("trace", te.Trace()))
	}
	return attrs
}

// LogError пишет ошибку в лог вместе с атрибутами Attrs и, если есть, методом, адресом и id запроса.
func LogError(c echo.Context, err error) {
	attrs := Attrs(err)

	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
	}

	var te *TrackerError
	if errors.As(err, &te) && te.Upstream != nil {
		slog.Error("Upstream request failed", attrs...)
		return
	}
	slog.Error("stack error", attrs...)
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// Trace возвращает записанные места вызова, от источника ошибки к верхнему уровню.
func (te *TrackerError) Trace() []string {
	res := make([]string, 0, len(te.ErrStack))
	for _, attr := range te.ErrStack {
		res = append(res, attr.Value.String())
	}
	return res
}

func getCallerFile(err error) slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.String("trace", "unknown")
	}
	_, file := filepath.Split(path)
	return slog.String("trace", fmt.Sprintf("%s:%d %s", file, no, err.Error()))
}

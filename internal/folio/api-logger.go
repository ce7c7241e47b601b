// Утилиты ответа ошибками API сервиса редактора.
// Ошибки из каталога apierrors отдаются как есть, остальные логируются с трассой и превращаются в общую ошибку.
//
// Основные возможности:
//   - Единый формат JSON-ответа с ошибкой.
//   - Логирование ошибок API с методом, адресом и местом вызова.
//   - Поддержка ошибок каталога с кодом статуса и обёрнутых ошибок.
package folio

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	stack_error "github.com/aisa-it/folio/internal/folio/stack-error"
	"github.com/labstack/echo/v4"
)

// Возврат ошибки каталога, а для прочих ошибок - 500 с универсальным сообщением
func EError(c echo.Context, err error) error {
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			getCallerFile(),
		)
		return EErrorDefined(c, apierrors.ErrGeneric)
	}

	var definedErr apierrors.DefinedError
	if errors.As(err, &definedErr) {
		if definedErr.StatusCode >= http.StatusInternalServerError {
			stack_error.LogError(c, err)
		}
		return EErrorDefined(c, definedErr)
	}

	stack_error.LogError(c, err)
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status> с сообщением ошибки (404 не логируется)
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	er := apierrors.ErrGeneric
	er.StatusCode = status
	if err != nil {
		er.Err = err.Error()
	}

	if status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			getCallerFile(),
		)
	}
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// getCallerFile возвращает атрибут лога с файлом и строкой вызова обработчика ошибки.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}

// Пакет содержит определения ошибок API редактора folio. Каждая ошибка имеет код, статус HTTP и описание на английском и русском языках, что позволяет фронту показывать пользователю одно понятное сообщение.
//
// Основные возможности:
//   - Ошибки авторизации и сессий, черновиков, валидации, вышестоящего REST API и рендера документов.
//   - Коды ошибок, сгруппированные по разрядам, и соответствующие статусы HTTP.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы отформатированные копии совпадали с исходной ошибкой каталога.
func (e DefinedError) Is(target error) bool {
	var t DefinedError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	// 1*** - auth errors
	ErrSessionRequired = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "session is required", RuErr: "Требуется авторизация"}
	ErrTokenExpired    = DefinedError{Code: 1002, StatusCode: http.StatusUnauthorized, Err: "token expired", RuErr: "Срок действия токена истек"}
	ErrTokenInvalid    = DefinedError{Code: 1003, StatusCode: http.StatusUnauthorized, Err: "invalid token", RuErr: "Неверный токен"}

	// 2*** - draft errors
	ErrDraftNotFound          = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "draft not found", RuErr: "Черновик не найден"}
	ErrEditorSessionNotFound  = DefinedError{Code: 2002, StatusCode: http.StatusNotFound, Err: "editor session not found", RuErr: "Сессия редактора не найдена"}
	ErrUnsupportedOperation   = DefinedError{Code: 2003, StatusCode: http.StatusBadRequest, Err: "unsupported editor operation: %s", RuErr: "Неподдерживаемая операция редактора: %s"}
	ErrUnsupportedKind        = DefinedError{Code: 2004, StatusCode: http.StatusBadRequest, Err: "unsupported draft kind: %s", RuErr: "Неподдерживаемый тип черновика: %s"}
	ErrSaveInProgress         = DefinedError{Code: 2005, StatusCode: http.StatusConflict, Err: "save is already in progress", RuErr: "Сохранение уже выполняется"}
	ErrEditorSessionClosed    = DefinedError{Code: 2006, StatusCode: http.StatusGone, Err: "editor session closed", RuErr: "Сессия редактора закрыта"}
	ErrDraftKindMismatch      = DefinedError{Code: 2007, StatusCode: http.StatusBadRequest, Err: "metadata does not match draft kind", RuErr: "Метаданные не соответствуют типу черновика"}
	ErrDraftSaveFailed        = DefinedError{Code: 2008, StatusCode: http.StatusBadGateway, Err: "failed to save draft", RuErr: "Не удалось сохранить черновик"}
	ErrDraftValidationFailure = DefinedError{Code: 2009, StatusCode: http.StatusUnprocessableEntity, Err: "missing required fields: %s", RuErr: "Не заполнены обязательные поля: %s"}

	// 3*** - upstream errors
	ErrUpstream            = DefinedError{Code: 3001, StatusCode: http.StatusBadGateway, Err: "upstream request failed", RuErr: "Ошибка запроса к серверу контента"}
	ErrUpstreamBadResponse = DefinedError{Code: 3002, StatusCode: http.StatusBadGateway, Err: "unexpected upstream response", RuErr: "Некорректный ответ сервера контента"}

	// 4*** - editor errors
	ErrDocumentParse  = DefinedError{Code: 4001, StatusCode: http.StatusBadRequest, Err: "failed to parse document", RuErr: "Не удалось разобрать документ"}
	ErrDocumentRender = DefinedError{Code: 4002, StatusCode: http.StatusInternalServerError, Err: "failed to render document", RuErr: "Не удалось отрисовать документ"}
	ErrHTMLRequired   = DefinedError{Code: 4003, StatusCode: http.StatusBadRequest, Err: "html is required", RuErr: "Поле html не может быть пустым"}

	// 9*** - common errors
	ErrGeneric       = DefinedError{Code: 9001, StatusCode: http.StatusInternalServerError, Err: "internal server error", RuErr: "Внутренняя ошибка сервера"}
	ErrInvalidID     = DefinedError{Code: 9002, StatusCode: http.StatusBadRequest, Err: "invalid ID", RuErr: "Указан неверный ID"}
	ErrRequestFormat = DefinedError{Code: 9003, StatusCode: http.StatusBadRequest, Err: "invalid request format", RuErr: "Неверный формат запроса"}
	ErrValidation    = DefinedError{Code: 9004, StatusCode: http.StatusBadRequest, Err: "request validation failed: %s", RuErr: "Ошибка проверки запроса: %s"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}

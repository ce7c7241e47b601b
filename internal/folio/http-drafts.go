package folio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/aisa-it/folio/internal/folio/client"
	"github.com/aisa-it/folio/internal/folio/drafts"
	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	stack_error "github.com/aisa-it/folio/internal/folio/stack-error"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Services) AddDraftServices(g *echo.Group) {
	g.POST("", s.openDraft)
	g.GET(":sessionId/", s.getDraft)
	g.PUT(":sessionId/mode/", s.reconfigureDraft)
	g.PUT(":sessionId/content/", s.updateDraftContent)
	g.PATCH(":sessionId/metadata/", s.patchDraftMetadata)
	g.POST(":sessionId/validate/", s.validateDraft)
	g.POST(":sessionId/save/", s.saveDraft)
	g.DELETE(":sessionId/", s.closeDraft)
}

// requestContext передаёт cookie и Authorization пользователя в запросы к REST API.
func requestContext(c echo.Context) context.Context {
	return client.WithCredentials(c.Request().Context(), client.CredentialsFromRequest(c.Request()))
}

func (s *Services) lookupSession(c echo.Context) (uuid.UUID, drafts.Session, error) {
	id, err := uuid.FromString(c.Param("sessionId"))
	if err != nil {
		return uuid.Nil, nil, apierrors.ErrInvalidID
	}
	session, ok := s.registry.Get(id)
	if !ok {
		return uuid.Nil, nil, apierrors.ErrEditorSessionNotFound
	}
	return id, session, nil
}

// loadSession загружает ресурс в режиме обновления. Ошибка загрузки не прерывает запрос:
// редактор остаётся со значениями по умолчанию, а текст ошибки возвращается фронту.
func loadSession(ctx context.Context, session drafts.Session) *string {
	err := session.Load(ctx)
	if err == nil || errors.Is(err, drafts.ErrLoadSuperseded) {
		return nil
	}

	slog.Warn("Load draft", append(stack_error.Attrs(err), "kind", session.Kind(), "mode", session.Mode().String())...)

	msg := apierrors.ErrUpstream.Error()
	var definedErr apierrors.DefinedError
	if errors.As(err, &definedErr) {
		msg = definedErr.Error()
	}
	return &msg
}

func draftSessionResponse(id uuid.UUID, session drafts.Session, loadErr *string) dto.DraftSession {
	mode := session.Mode()
	return dto.DraftSession{
		SessionID: id.String(),
		Kind:      string(session.Kind()),
		Mode:      mode.Name(),
		Slug:      mode.Slug(),
		Loaded:    session.Loaded(),
		Content:   session.Content(),
		Metadata:  session.MetadataValue(),
		LoadError: loadErr,
	}
}

// openDraft godoc
// @id openDraft
// @Summary Черновики: открытие сессии редактора
// @Description Открывает сессию редактора поста или проекта. В режиме обновления ресурс загружается по slug
// @Tags Drafts
// @Accept json
// @Produce json
// @Param data body dto.OpenDraftRequest true "Вид ресурса и режим"
// @Success 201 {object} dto.DraftSession "Сессия редактора"
// @Failure 400 {object} apierrors.DefinedError "Некорректный запрос"
// @Failure 401 {object} apierrors.DefinedError "Требуется авторизация"
// @Router /api/drafts/ [post]
func (s *Services) openDraft(c echo.Context) error {
	var req dto.OpenDraftRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestFormat)
	}
	kind, err := drafts.ParseKind(req.Kind)
	if err != nil {
		return EError(c, err)
	}
	req.Kind = string(kind)
	if err := c.Validate(req); err != nil {
		return EError(c, err)
	}
	mode, err := drafts.ParseMode(req.Mode, req.Slug)
	if err != nil {
		return EError(c, err)
	}

	session, err := drafts.NewSession(kind, s.api, mode, s.notifier)
	if err != nil {
		return EError(c, err)
	}
	id := s.registry.Open(session)

	loadErr := loadSession(requestContext(c), session)
	return c.JSON(http.StatusCreated, draftSessionResponse(id, session, loadErr))
}

// getDraft godoc
// @id getDraft
// @Summary Черновики: состояние сессии редактора
// @Description Возвращает контент и метаданные сессии. Если ресурс ещё не загружен, загрузка повторяется
// @Tags Drafts
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Success 200 {object} dto.DraftSession "Сессия редактора"
// @Failure 404 {object} apierrors.DefinedError "Сессия не найдена"
// @Router /api/drafts/{sessionId}/ [get]
func (s *Services) getDraft(c echo.Context) error {
	id, session, err := s.lookupSession(c)
	if err != nil {
		return EError(c, err)
	}

	var loadErr *string
	if session.Mode().IsUpdate() && !session.Loaded() {
		loadErr = loadSession(requestContext(c), session)
	}
	return c.JSON(http.StatusOK, draftSessionResponse(id, session, loadErr))
}

// reconfigureDraft godoc
// @id reconfigureDraft
// @Summary Черновики: смена режима редактора
// @Description Переключает сессию на создание или обновление другого ресурса. Состояние сбрасывается, незавершённая загрузка отбрасывается
// @Tags Drafts
// @Accept json
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Param data body dto.ReconfigureDraftRequest true "Новый режим"
// @Success 200 {object} dto.DraftSession "Сессия редактора"
// @Failure 400 {object} apierrors.DefinedError "Некорректный режим"
// @Failure 404 {object} apierrors.DefinedError "Сессия не найдена"
// @Router /api/drafts/{sessionId}/mode/ [put]
func (s *Services) reconfigureDraft(c echo.Context) error {
	id, session, err := s.lookupSession(c)
	if err != nil {
		return EError(c, err)
	}

	var req dto.ReconfigureDraftRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return EError(c, err)
	}
	mode, err := drafts.ParseMode(req.Mode, req.Slug)
	if err != nil {
		return EError(c, err)
	}
	if err := session.Reconfigure(mode); err != nil {
		return EError(c, err)
	}

	loadErr := loadSession(requestContext(c), session)
	return c.JSON(http.StatusOK, draftSessionResponse(id, session, loadErr))
}

// updateDraftContent godoc
// @id updateDraftContent
// @Summary Черновики: замена контента
// @Tags Drafts
// @Accept json
// @Param sessionId path string true "ID сессии"
// @Param data body dto.ContentRequest true "Документ объектом или строкой"
// @Success 204 "Контент сохранён в сессии"
// @Failure 404 {object} apierrors.DefinedError "Сессия не найдена"
// @Router /api/drafts/{sessionId}/content/ [put]
func (s *Services) updateDraftContent(c echo.Context) error {
	_, session, err := s.lookupSession(c)
	if err != nil {
		return EError(c, err)
	}

	var req dto.ContentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestFormat)
	}
	if err := session.SetContent(tiptap.NormalizeContent(req.Content)); err != nil {
		return EError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// patchDraftMetadata godoc
// @id patchDraftMetadata
// @Summary Черновики: изменение метаданных
// @Description Изменяет только переданные поля метаданных, null сбрасывает поле. Поля другого вида ресурса отклоняются
// @Tags Drafts
// @Accept json
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Param data body object true "Поля метаданных"
// @Success 200 {object} object "Метаданные после изменения"
// @Failure 400 {object} apierrors.DefinedError "Поля не соответствуют виду ресурса"
// @Failure 404 {object} apierrors.DefinedError "Сессия не найдена"
// @Router /api/drafts/{sessionId}/metadata/ [patch]
func (s *Services) patchDraftMetadata(c echo.Context) error {
	_, session, err := s.lookupSession(c)
	if err != nil {
		return EError(c, err)
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil || !json.Valid(raw) {
		return EErrorDefined(c, apierrors.ErrRequestFormat)
	}
	if err := session.PatchMetadata(raw); err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, session.MetadataValue())
}

// validateDraft godoc
// @id validateDraft
// @Summary Черновики: проверка обязательных полей
// @Tags Drafts
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Success 200 {object} dto.ValidationResponse "Результат проверки"
// @Failure 404 {object} apierrors.DefinedError "Сессия не найдена"
// @Router /api/drafts/{sessionId}/validate/ [post]
func (s *Services) validateDraft(c echo.Context) error {
	_, session, err := s.lookupSession(c)
	if err != nil {
		return EError(c, err)
	}

	res := session.Validate()
	missing := res.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return c.JSON(http.StatusOK, dto.ValidationResponse{IsValid: res.IsValid, MissingFields: missing})
}

// saveDraft godoc
// @id saveDraft
// @Summary Черновики: сохранение
// @Description Проверяет метаданные и выполняет ровно один вызов создания или обновления ресурса
// @Tags Drafts
// @Produce json
// @Param sessionId path string true "ID сессии"
// @Success 200 {object} dto.SaveResponse "Ресурс сохранён"
// @Failure 400 {object} dto.SaveResponse "Неподдерживаемый режим"
// @Failure 409 {object} apierrors.DefinedError "Сохранение уже выполняется"
// @Failure 422 {object} dto.SaveResponse "Не заполнены обязательные поля"
// @Failure 502 {object} dto.SaveResponse "Ошибка REST API"
// @Router /api/drafts/{sessionId}/save/ [post]
func (s *Services) saveDraft(c echo.Context) error {
	_, session, err := s.lookupSession(c)
	if err != nil {
		return EError(c, err)
	}

	outcome, err := session.Save(requestContext(c))
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(saveStatus(outcome.Kind), dto.SaveResponse{
		Outcome:       string(outcome.Kind),
		Message:       outcome.Message,
		MissingFields: outcome.MissingFields,
	})
}

func saveStatus(kind drafts.OutcomeKind) int {
	switch kind {
	case drafts.OutcomeSuccess:
		return http.StatusOK
	case drafts.OutcomeValidationFailed:
		return apierrors.ErrDraftValidationFailure.StatusCode
	case drafts.OutcomeUnsupported:
		return apierrors.ErrUnsupportedOperation.StatusCode
	default:
		return apierrors.ErrDraftSaveFailed.StatusCode
	}
}

// closeDraft godoc
// @id closeDraft
// @Summary Черновики: закрытие сессии редактора
// @Tags Drafts
// @Param sessionId path string true "ID сессии"
// @Success 204 "Сессия закрыта"
// @Failure 404 {object} apierrors.DefinedError "Сессия не найдена"
// @Router /api/drafts/{sessionId}/ [delete]
func (s *Services) closeDraft(c echo.Context) error {
	id, err := uuid.FromString(c.Param("sessionId"))
	if err != nil {
		return EErrorDefined(c, apierrors.ErrInvalidID)
	}
	if !s.registry.Close(id) {
		return EErrorDefined(c, apierrors.ErrEditorSessionNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

package folio

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/editor"
	policy "github.com/aisa-it/folio/internal/folio/editor/redactor-policy"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	stack_error "github.com/aisa-it/folio/internal/folio/stack-error"
	"github.com/labstack/echo/v4"
)

func (s *Services) AddEditorServices(g *echo.Group) {
	g.POST("editor/render/", s.renderDocument)
	g.POST("editor/parse/", s.parseDocument)
}

// renderDocument godoc
// @id renderDocument
// @Summary Редактор: рендер документа в HTML
// @Description Принимает документ объектом или строкой с сериализованным объектом и возвращает безопасный HTML
// @Tags Editor
// @Accept json
// @Produce json
// @Param document body object true "Документ TipTap"
// @Success 200 {object} dto.RenderResponse "HTML документа"
// @Failure 400 {object} apierrors.DefinedError "Некорректный запрос"
// @Router /api/editor/render/ [post]
func (s *Services) renderDocument(c echo.Context) error {
	var raw json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestFormat)
	}

	markup, err := s.renderHTML(tiptap.NormalizeContent(raw))
	if err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, dto.RenderResponse{HTML: markup})
}

func (s *Services) renderHTML(doc *tiptap.Document) (string, error) {
	markup, err := editor.RenderDocument(doc)
	if err != nil {
		return "", stack_error.TrackErrorStack(fmt.Errorf("%w: %w", apierrors.ErrDocumentRender, err))
	}
	markup = policy.Sanitize(markup)

	if s.cfg.MinifyHTML && markup != "" {
		minified, err := policy.Minify(markup)
		if err != nil {
			return "", stack_error.TrackErrorStack(fmt.Errorf("%w: %w", apierrors.ErrDocumentRender, err))
		}
		markup = minified
	}
	return markup, nil
}

// parseDocument godoc
// @id parseDocument
// @Summary Редактор: разбор HTML в документ
// @Description Разбирает HTML-разметку в документ TipTap, медиа-ноды восстанавливаются с выравниванием и подписью
// @Tags Editor
// @Accept json
// @Produce json
// @Param data body dto.ParseRequest true "HTML-разметка"
// @Success 200 {object} tiptap.Document "Документ"
// @Failure 400 {object} apierrors.DefinedError "Некорректный запрос"
// @Router /api/editor/parse/ [post]
func (s *Services) parseDocument(c echo.Context) error {
	var req dto.ParseRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRequestFormat)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return EErrorDefined(c, apierrors.ErrHTMLRequired)
	}
	if err := c.Validate(req); err != nil {
		return EError(c, err)
	}

	doc, err := editor.ParseDocument(strings.NewReader(req.HTML))
	if err != nil {
		return EError(c, stack_error.TrackErrorStack(fmt.Errorf("%w: %w", apierrors.ErrDocumentParse, err)))
	}
	return c.JSON(http.StatusOK, doc)
}

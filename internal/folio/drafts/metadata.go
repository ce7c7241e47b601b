package drafts

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"
	"strings"

	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
)

// BlogMetadata - поля поста вне документа. Незаданные идентификаторы - nil.
type BlogMetadata struct {
	SelectedSeoID         *int64  `json:"selectedSeoId" validate:"selected" label:"SEO"`
	SelectedCoverImageID  *int64  `json:"selectedCoverImageId" validate:"selected" label:"Cover image"`
	SelectedCoverImageURL string  `json:"selectedCoverImageUrl"`
	SelectedSectionID     *int64  `json:"selectedSectionId" validate:"selected" label:"Section"`
	SelectedTags          []int64 `json:"selectedTags"`
	Title                 string  `json:"title" validate:"notblank" label:"Title"`
	Description           string  `json:"description" validate:"notblank" label:"Description"`
}

func DefaultBlogMetadata() BlogMetadata {
	return BlogMetadata{SelectedTags: []int64{}}
}

func (m BlogMetadata) clone() BlogMetadata {
	m.SelectedTags = slices.Clone(m.SelectedTags)
	if m.SelectedTags == nil {
		m.SelectedTags = []int64{}
	}
	return m
}

// blogMetadataFrom переносит поля ответа 1:1, отсутствующие значения заменяются значениями по умолчанию.
func blogMetadataFrom(d *dto.BlogDetails) BlogMetadata {
	m := DefaultBlogMetadata()
	m.SelectedSeoID = d.SeoID
	m.SelectedCoverImageID = d.CoverID
	m.SelectedCoverImageURL = deref(d.CoverURL)
	m.SelectedSectionID = d.SectionID
	m.SelectedTags = d.TagIDs()
	m.Title = deref(d.Title)
	m.Description = deref(d.Description)
	return m
}

func (m BlogMetadata) request(mode Mode, content *tiptap.Document) dto.BlogRequest {
	req := dto.BlogRequest{
		SectionID:   m.SelectedSectionID,
		SeoID:       m.SelectedSeoID,
		CoverID:     m.SelectedCoverImageID,
		Title:       m.Title,
		Description: m.Description,
		Content:     content,
		Tags:        slices.Clone(m.SelectedTags),
	}
	if req.Tags == nil {
		req.Tags = []int64{}
	}
	if mode.IsUpdate() {
		req.Slug = mode.Slug()
	}
	return req
}

// ProjectMetadata - поля проекта вне документа. Документ-вложение обязателен только для платного проекта.
type ProjectMetadata struct {
	SelectedSeoID         *int64   `json:"selectedSeoId" validate:"selected" label:"SEO"`
	SelectedCoverImageID  *int64   `json:"selectedCoverImageId" validate:"selected" label:"Cover image"`
	SelectedCoverImageURL string   `json:"selectedCoverImageUrl"`
	SelectedDocumentID    *int64   `json:"selectedDocumentId"`
	SelectedDocumentURL   string   `json:"selectedDocumentUrl"`
	ProjectType           string   `json:"projectType" validate:"notblank" label:"Project type"`
	Price                 *float64 `json:"price"`
	Title                 string   `json:"title" validate:"notblank" label:"Title"`
	Description           string   `json:"description" validate:"notblank" label:"Description"`
}

func DefaultProjectMetadata() ProjectMetadata {
	return ProjectMetadata{}
}

func (m ProjectMetadata) clone() ProjectMetadata {
	return m
}

func (m ProjectMetadata) paid() bool {
	return m.Price != nil && *m.Price > 0
}

func projectMetadataFrom(d *dto.ProjectDetails) ProjectMetadata {
	m := DefaultProjectMetadata()
	m.SelectedSeoID = d.SeoID
	m.SelectedCoverImageID = d.CoverID
	m.SelectedCoverImageURL = deref(d.CoverURL)
	m.SelectedDocumentID = d.AttachmentID
	m.SelectedDocumentURL = deref(d.AttachmentURL)
	m.ProjectType = deref(d.ProjectType)
	m.Price = d.Price
	m.Title = deref(d.Title)
	m.Description = deref(d.Description)
	return m
}

func (m ProjectMetadata) request(mode Mode, content *tiptap.Document) dto.ProjectRequest {
	req := dto.ProjectRequest{
		SeoID:        m.SelectedSeoID,
		CoverID:      m.SelectedCoverImageID,
		AttachmentID: m.SelectedDocumentID,
		ProjectType:  m.ProjectType,
		Price:        m.Price,
		Title:        m.Title,
		Description:  m.Description,
		Content:      content,
	}
	if mode.IsUpdate() {
		req.Slug = mode.Slug()
	}
	return req
}

// resetNullFields обнуляет поля структуры m, переданные в raw как null.
func resetNullFields(m any, raw json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	v := reflect.ValueOf(m).Elem()
	t := v.Type()
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if val, ok := fields[name]; ok && bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			v.Field(i).SetZero()
		}
	}
	return nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

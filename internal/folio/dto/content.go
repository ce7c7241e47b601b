// Содержит структуры данных (DTO) для обмена с REST API контента и с фронтом редактора.
//
// Основные возможности:
//   - Детали поста и проекта в представлении редактора (BlogDetails, ProjectDetails).
//   - Тела запросов создания и обновления (BlogRequest, ProjectRequest).
//   - Ответ записи {status, message|error} с единственным признаком успеха status == 200.
//   - Запросы и ответы API редактора (сессии черновиков, рендер и разбор документов).
package dto

import (
	"encoding/json"
	"net/http"

	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
)

type BlogTag struct {
	TagID int64 `json:"tag_id"`
}

// BlogDetails - пост в представлении редактора (is_editor=true). Content может прийти объектом или строкой с JSON.
type BlogDetails struct {
	Slug        string          `json:"slug,omitempty"`
	SeoID       *int64          `json:"seo_id" extensions:"x-nullable"`
	CoverID     *int64          `json:"cover_id" extensions:"x-nullable"`
	CoverURL    *string         `json:"cover_url" extensions:"x-nullable"`
	SectionID   *int64          `json:"section_id" extensions:"x-nullable"`
	Title       *string         `json:"chinese_title" extensions:"x-nullable"`
	Description *string         `json:"chinese_description" extensions:"x-nullable"`
	Content     json.RawMessage `json:"chinese_content" swaggertype:"object" extensions:"x-nullable"`
	Tags        []BlogTag       `json:"blog_tags"`
}

func (d BlogDetails) TagIDs() []int64 {
	res := make([]int64, 0, len(d.Tags))
	for _, t := range d.Tags {
		res = append(res, t.TagID)
	}
	return res
}

type ProjectDetails struct {
	Slug          string          `json:"slug,omitempty"`
	SeoID         *int64          `json:"seo_id" extensions:"x-nullable"`
	CoverID       *int64          `json:"cover_id" extensions:"x-nullable"`
	CoverURL      *string         `json:"cover_url" extensions:"x-nullable"`
	AttachmentID  *int64          `json:"attachment_id" extensions:"x-nullable"`
	AttachmentURL *string         `json:"attachment_url" extensions:"x-nullable"`
	ProjectType   *string         `json:"project_type" extensions:"x-nullable"`
	Price         *float64        `json:"project_price" extensions:"x-nullable"`
	Title         *string         `json:"chinese_title" extensions:"x-nullable"`
	Description   *string         `json:"chinese_description" extensions:"x-nullable"`
	Content       json.RawMessage `json:"chinese_content" swaggertype:"object" extensions:"x-nullable"`
}

// BlogRequest - тело создания и обновления поста. Slug передаётся только при обновлении.
type BlogRequest struct {
	Slug        string           `json:"slug,omitempty"`
	SectionID   *int64           `json:"section_id,omitempty"`
	SeoID       *int64           `json:"seo_id"`
	CoverID     *int64           `json:"cover_id"`
	Title       string           `json:"chinese_title"`
	Description string           `json:"chinese_description"`
	Content     *tiptap.Document `json:"chinese_content"`
	Tags        []int64          `json:"blog_tags"`
}

type ProjectRequest struct {
	Slug         string           `json:"slug,omitempty"`
	SeoID        *int64           `json:"seo_id"`
	CoverID      *int64           `json:"cover_id"`
	AttachmentID *int64           `json:"attachment_id,omitempty"`
	ProjectType  string           `json:"project_type"`
	Price        *float64         `json:"price,omitempty"`
	Title        string           `json:"chinese_title"`
	Description  string           `json:"chinese_description"`
	Content      *tiptap.Document `json:"chinese_content"`
}

// Response - ответ операций записи. Успех определяется только полем status.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r Response) OK() bool {
	return r.Status == http.StatusOK
}

// Text возвращает сообщение сервера: message, а если его нет - error.
func (r Response) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

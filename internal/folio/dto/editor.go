package dto

import (
	"encoding/json"

	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
)

// OpenDraftRequest открывает сессию редактора. Mode - "create" или "update", для обновления нужен slug.
type OpenDraftRequest struct {
	Kind string `json:"kind" validate:"required,oneof=blog project"`
	Mode string `json:"mode"`
	Slug string `json:"slug" validate:"omitempty,slug"`
}

// DraftSession - состояние сессии редактора для фронта.
type DraftSession struct {
	SessionID string           `json:"session_id"`
	Kind      string           `json:"kind"`
	Mode      string           `json:"mode"`
	Slug      string           `json:"slug,omitempty"`
	Loaded    bool             `json:"loaded"`
	Content   *tiptap.Document `json:"content" extensions:"x-nullable"`
	Metadata  any              `json:"metadata"`
	LoadError *string          `json:"load_error,omitempty" extensions:"x-nullable"`
}

type ReconfigureDraftRequest struct {
	Mode string `json:"mode"`
	Slug string `json:"slug" validate:"omitempty,slug"`
}

type ContentRequest struct {
	Content json.RawMessage `json:"content" swaggertype:"object"`
}

type ValidationResponse struct {
	IsValid       bool     `json:"is_valid"`
	MissingFields []string `json:"missing_fields"`
}

// SaveResponse - итог сохранения, ровно одно уведомление на вызов.
type SaveResponse struct {
	Outcome       string   `json:"outcome"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

type RenderResponse struct {
	HTML string `json:"html"`
}

type ParseRequest struct {
	HTML string `json:"html" validate:"required"`
}

type VersionResponse struct {
	Version string `json:"version"`
}

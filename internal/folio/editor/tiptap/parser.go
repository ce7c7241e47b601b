package tiptap

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

var ErrNotDocument = errors.New("content is not a document tree")

// ParseJSON строго парсит JSON документа TipTap.
func ParseJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Type == "" {
		return nil, ErrNotDocument
	}
	if doc.Content == nil {
		doc.Content = make([]Node, 0)
	}
	return &doc, nil
}

// NormalizeContent приводит сохранённый контент к дереву документа.
//
// Контент может прийти объектом или строкой с сериализованным объектом, оба варианта дают одинаковое дерево.
// Отсутствующий контент или null возвращает nil: редактор показывает заглушку, а не пустой документ.
// Повреждённый контент логируется и заменяется пустым документом.
func NormalizeContent(raw json.RawMessage) *Document {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			slog.Warn("Malformed stringified document", "err", err)
			return EmptyDocument()
		}
		inner := bytes.TrimSpace([]byte(s))
		if len(inner) == 0 || bytes.Equal(inner, []byte("null")) {
			return nil
		}
		raw = inner
	}

	if raw[0] != '{' {
		slog.Warn("Unexpected document shape", "prefix", string(raw[:min(len(raw), 16)]))
		return EmptyDocument()
	}

	doc, err := ParseJSON(bytes.NewReader(raw))
	if err != nil {
		slog.Warn("Malformed document content", "err", err)
		return EmptyDocument()
	}
	return doc
}

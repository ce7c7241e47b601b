package drafts

import (
	"context"
	"encoding/json"

	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
)

// BlogService - операции REST API постов, которые нужны редактору.
type BlogService interface {
	GetBlogDetails(ctx context.Context, slug string) (*dto.BlogDetails, error)
	CreateBlog(ctx context.Context, req dto.BlogRequest) (*dto.Response, error)
	UpdateBlog(ctx context.Context, req dto.BlogRequest) (*dto.Response, error)
}

type blogBackend struct {
	svc BlogService
}

func (blogBackend) kind() Kind                              { return KindBlog }
func (blogBackend) defaults() BlogMetadata                  { return DefaultBlogMetadata() }
func (blogBackend) clone(m BlogMetadata) BlogMetadata       { return m.clone() }
func (blogBackend) validate(m BlogMetadata) ValidationResult { return ValidateBlogData(m) }

func (b blogBackend) fetch(ctx context.Context, slug string) (BlogMetadata, json.RawMessage, error) {
	details, err := b.svc.GetBlogDetails(ctx, slug)
	if err != nil {
		return BlogMetadata{}, nil, err
	}
	return blogMetadataFrom(details), details.Content, nil
}

// submit вызывает создание в режиме Create и обновление в режиме Update, никогда оба.
func (b blogBackend) submit(ctx context.Context, mode Mode, m BlogMetadata, content *tiptap.Document) (*dto.Response, error) {
	req := m.request(mode, content)
	if mode.IsUpdate() {
		return b.svc.UpdateBlog(ctx, req)
	}
	return b.svc.CreateBlog(ctx, req)
}

// BlogEditor - редактор поста.
type BlogEditor struct {
	*Controller[BlogMetadata]
}

func NewBlogEditor(svc BlogService, mode Mode, notifier Notifier) *BlogEditor {
	return &BlogEditor{newController[BlogMetadata](blogBackend{svc: svc}, mode, notifier)}
}

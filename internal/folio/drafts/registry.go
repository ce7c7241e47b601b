package drafts

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	"github.com/gofrs/uuid"
)

// Session - сессия редактора без знания вида ресурса. Реализуется BlogEditor и ProjectEditor.
type Session interface {
	Kind() Kind
	Mode() Mode
	Loaded() bool
	Content() *tiptap.Document
	SetContent(doc *tiptap.Document) error
	MetadataValue() any
	PatchMetadata(raw json.RawMessage) error
	Validate() ValidationResult
	Load(ctx context.Context) error
	Reconfigure(mode Mode) error
	Save(ctx context.Context) (Outcome, error)
	Close()
}

// Services - API ресурсов, из которых открываются сессии.
type Services interface {
	BlogService
	ProjectService
}

// NewSession открывает редактор нужного вида.
func NewSession(kind Kind, svc Services, mode Mode, notifier Notifier) (Session, error) {
	switch kind {
	case KindBlog:
		return NewBlogEditor(svc, mode, notifier), nil
	case KindProject:
		return NewProjectEditor(svc, mode, notifier), nil
	}
	return nil, apierrors.ErrUnsupportedKind.WithFormattedMessage(string(kind))
}

type registryEntry struct {
	session    Session
	lastAccess time.Time
}

// Registry хранит открытые сессии редактора по идентификатору. Сессия без обращений дольше ttl закрывается.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*registryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*registryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (r *Registry) Open(s Session) uuid.UUID {
	id := uuid.Must(uuid.NewV4())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &registryEntry{session: s, lastAccess: r.now()}
	return id
}

// Get возвращает сессию и продлевает её жизнь.
func (r *Registry) Get(id uuid.UUID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastAccess = r.now()
	return e.session, true
}

// Close удаляет сессию из реестра и закрывает её.
func (r *Registry) Close(id uuid.UUID) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.session.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup закрывает неактивные сессии и возвращает их количество.
func (r *Registry) Cleanup() int {
	deadline := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []Session
	for id, e := range r.sessions {
		if e.lastAccess.Before(deadline) {
			expired = append(expired, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// CloseAll закрывает все сессии, например при остановке сервиса.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*registryEntry)
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Close()
	}
}

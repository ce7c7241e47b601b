package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/aisa-it/folio/internal/folio/dto"
	"github.com/aisa-it/folio/internal/folio/editor/tiptap"
	"github.com/gofrs/uuid"
)

// ErrLoadSuperseded возвращается загрузкой, ответ которой отброшен: режим сменился или сессия закрыта.
var ErrLoadSuperseded = errors.New("draft load superseded")

// backend связывает контроллер с конкретным видом ресурса.
type backend[M any] interface {
	kind() Kind
	defaults() M
	clone(m M) M
	fetch(ctx context.Context, slug string) (M, json.RawMessage, error)
	validate(m M) ValidationResult
	submit(ctx context.Context, mode Mode, m M, content *tiptap.Document) (*dto.Response, error)
}

type pendingLoad struct {
	generation uuid.UUID
	cancel     context.CancelFunc
	done       chan struct{}
	err        error
}

func (ld *pendingLoad) wait(ctx context.Context) error {
	select {
	case <-ld.done:
		return ld.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Controller владеет контентом и метаданными одной сессии редактора.
//
// Контент nil означает, что документа ещё нет и редактор показывает плейсхолдер.
// Гидрация после загрузки перезаписывает правки, сделанные во время загрузки.
type Controller[M any] struct {
	backend  backend[M]
	notifier Notifier

	mu         sync.Mutex
	mode       Mode
	content    *tiptap.Document
	metadata   M
	generation uuid.UUID
	load       *pendingLoad
	loaded     bool
	saving     bool
	closed     bool
}

func newController[M any](b backend[M], mode Mode, notifier Notifier) *Controller[M] {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Controller[M]{
		backend:    b,
		notifier:   notifier,
		mode:       mode,
		metadata:   b.defaults(),
		generation: newGeneration(),
	}
}

func newGeneration() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func (c *Controller[M]) Kind() Kind {
	return c.backend.kind()
}

func (c *Controller[M]) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Loaded - true после успешной гидрации в режиме обновления.
func (c *Controller[M]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Controller[M]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Content возвращает текущий документ. Документ не изменяется после установки, его заменяют целиком.
func (c *Controller[M]) Content() *tiptap.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

func (c *Controller[M]) SetContent(doc *tiptap.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apierrors.ErrEditorSessionClosed
	}
	c.content = doc
	return nil
}

func (c *Controller[M]) Metadata() M {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend.clone(c.metadata)
}

func (c *Controller[M]) SetMetadata(m M) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apierrors.ErrEditorSessionClosed
	}
	c.metadata = c.backend.clone(m)
	return nil
}

// UpdateMetadata применяет fn к копии метаданных и сохраняет результат.
func (c *Controller[M]) UpdateMetadata(fn func(m *M)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apierrors.ErrEditorSessionClosed
	}
	m := c.backend.clone(c.metadata)
	fn(&m)
	c.metadata = m
	return nil
}

// MetadataValue - метаданные для сериализации без знания вида ресурса.
func (c *Controller[M]) MetadataValue() any {
	return c.Metadata()
}

// PatchMetadata накладывает JSON-объект на текущие метаданные: изменяются только переданные поля,
// null сбрасывает поле к нулевому значению, в том числе строковые. Поля другого вида ресурса отклоняются,
// и метаданные остаются прежними.
func (c *Controller[M]) PatchMetadata(raw json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apierrors.ErrEditorSessionClosed
	}
	m := c.backend.clone(c.metadata)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("%w: %w", apierrors.ErrDraftKindMismatch, err)
	}
	if err := resetNullFields(&m, raw); err != nil {
		return fmt.Errorf("%w: %w", apierrors.ErrDraftKindMismatch, err)
	}
	c.metadata = c.backend.clone(m)
	return nil
}

func (c *Controller[M]) Validate() ValidationResult {
	return c.backend.validate(c.Metadata())
}

// Load загружает существующий ресурс в режиме обновления и гидрирует состояние одним переходом.
//
// На один ключ выполняется одна загрузка: повторный вызов после гидрации ничего не делает,
// одновременные вызовы ждут общую загрузку. Загрузка не зависит от контекста вызвавшего:
// отмена ctx прерывает только ожидание этого вызова. Ответ, пришедший после смены режима или закрытия сессии,
// отбрасывается с ErrLoadSuperseded. Ошибка чтения оставляет значения по умолчанию.
func (c *Controller[M]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return apierrors.ErrEditorSessionClosed
	}
	if !c.mode.IsUpdate() || c.loaded {
		c.mu.Unlock()
		return nil
	}
	if ld := c.load; ld != nil {
		c.mu.Unlock()
		return ld.wait(ctx)
	}

	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ld := &pendingLoad{generation: c.generation, cancel: cancel, done: make(chan struct{})}
	c.load = ld
	slug := c.mode.Slug()
	c.mu.Unlock()

	go c.runLoad(loadCtx, ld, slug)
	return ld.wait(ctx)
}

func (c *Controller[M]) runLoad(ctx context.Context, ld *pendingLoad, slug string) {
	metadata, raw, err := c.backend.fetch(ctx, slug)
	ld.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(ld.done)

	if c.closed || c.generation != ld.generation {
		slog.Debug("Discard stale draft load", "kind", c.backend.kind(), "slug", slug)
		ld.err = ErrLoadSuperseded
		return
	}
	c.load = nil

	if err != nil {
		ld.err = err
		return
	}

	c.content = tiptap.NormalizeContent(raw)
	c.metadata = metadata
	c.loaded = true
}

// Reconfigure переключает редактор на другой режим: незавершённая загрузка отменяется, состояние сбрасывается
// к значениям по умолчанию. Тот же режим ничего не меняет.
func (c *Controller[M]) Reconfigure(mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apierrors.ErrEditorSessionClosed
	}
	if mode == c.mode {
		return nil
	}

	c.reset()
	c.mode = mode
	return nil
}

func (c *Controller[M]) reset() {
	if c.load != nil {
		c.load.cancel()
		c.load = nil
	}
	c.generation = newGeneration()
	c.content = nil
	c.metadata = c.backend.defaults()
	c.loaded = false
}

// Close отменяет незавершённую загрузку. После закрытия состояние не меняется.
func (c *Controller[M]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.load != nil {
		c.load.cancel()
		c.load = nil
	}
}

// Save проверяет метаданные и выполняет ровно один вызов создания или обновления.
// Каждый вызов, принятый в работу, завершается одним уведомлением Notifier и возвращает тот же Outcome.
// Ошибки сети и разбора ответа превращаются в OutcomeFailure, локальное состояние не меняется.
// Пока идёт сохранение, повторный вызов возвращает apierrors.ErrSaveInProgress.
func (c *Controller[M]) Save(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Outcome{}, apierrors.ErrEditorSessionClosed
	}
	if c.saving {
		c.mu.Unlock()
		return Outcome{}, apierrors.ErrSaveInProgress
	}
	c.saving = true
	mode, metadata, content := c.mode, c.backend.clone(c.metadata), c.content
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.saving = false
		c.mu.Unlock()
	}()

	outcome := c.save(ctx, mode, metadata, content)
	c.notifier.Notify(outcome)
	return outcome, nil
}

func (c *Controller[M]) save(ctx context.Context, mode Mode, metadata M, content *tiptap.Document) Outcome {
	outcome := Outcome{Resource: c.backend.kind(), Mode: mode}

	if !mode.Valid() {
		err := apierrors.ErrUnsupportedOperation.WithFormattedMessage(mode.String())
		outcome.Kind = OutcomeUnsupported
		outcome.Message = err.Error()
		outcome.Err = err
		return outcome
	}

	if res := c.backend.validate(metadata); !res.IsValid {
		outcome.Kind = OutcomeValidationFailed
		outcome.Message = res.Message()
		outcome.MissingFields = res.MissingFields
		return outcome
	}

	resp, err := c.backend.submit(ctx, mode, metadata, content)
	switch {
	case err != nil:
		outcome.Kind = OutcomeFailure
		outcome.Message = genericFailureMessage
		outcome.Err = err
	case resp == nil:
		outcome.Kind = OutcomeFailure
		outcome.Message = genericFailureMessage
		outcome.Err = apierrors.ErrUpstreamBadResponse
	case !resp.OK():
		outcome.Kind = OutcomeFailure
		outcome.Message = resp.Text()
		if outcome.Message == "" {
			outcome.Message = genericFailureMessage
		}
		outcome.Err = fmt.Errorf("%w: status %d", apierrors.ErrDraftSaveFailed, resp.Status)
	default:
		outcome.Kind = OutcomeSuccess
		outcome.Message = resp.Message
		if outcome.Message == "" {
			outcome.Message = successMessage
		}
	}
	return outcome
}

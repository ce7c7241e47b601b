// Пакет drafts синхронизирует черновик поста или проекта из REST API с локальным состоянием редактора.
//
// Основные возможности:
//   - Явный режим редактора: создание нового или обновление существующего ресурса по slug.
//   - Однократная гидрация контента и метаданных после загрузки, с отбрасыванием устаревших ответов.
//   - Проверка обязательных полей метаданных перед каждым сохранением.
//   - Ровно один вызов создания или обновления на сохранение и ровно одно уведомление об итоге.
//   - Реестр сессий редактора с очисткой неактивных.
package drafts

import (
	"strings"

	"github.com/aisa-it/folio/internal/folio/apierrors"
)

type Kind string

const (
	KindBlog    Kind = "blog"
	KindProject Kind = "project"
)

func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindBlog, KindProject:
		return k, nil
	}
	return "", apierrors.ErrUnsupportedKind.WithFormattedMessage(raw)
}

type operation int

const (
	opUnknown operation = iota
	opCreate
	opUpdate
)

// Mode - режим редактора. Нулевое значение не является ни созданием, ни обновлением, сохранение в нём
// завершается исходом OutcomeUnsupported.
type Mode struct {
	op   operation
	slug string
}

func Create() Mode {
	return Mode{op: opCreate}
}

func Update(slug string) Mode {
	return Mode{op: opUpdate, slug: slug}
}

// ParseMode строит режим из строки режима и slug на входе в редактор.
// Пустая строка режима выводится из наличия slug.
func ParseMode(raw string, slug string) (Mode, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	slug = strings.TrimSpace(slug)

	switch raw {
	case "":
		if slug != "" {
			return Update(slug), nil
		}
		return Create(), nil
	case "create", "create-new", "new":
		if slug != "" {
			return Mode{}, apierrors.ErrUnsupportedOperation.WithFormattedMessage("create with slug " + slug)
		}
		return Create(), nil
	case "update", "update-existing", "edit":
		if slug == "" {
			return Mode{}, apierrors.ErrUnsupportedOperation.WithFormattedMessage("update without slug")
		}
		return Update(slug), nil
	}
	return Mode{}, apierrors.ErrUnsupportedOperation.WithFormattedMessage(raw)
}

func (m Mode) IsCreate() bool {
	return m.op == opCreate
}

func (m Mode) IsUpdate() bool {
	return m.op == opUpdate && m.slug != ""
}

// Valid - true для Create и для Update с непустым slug.
func (m Mode) Valid() bool {
	return m.IsCreate() || m.IsUpdate()
}

func (m Mode) Slug() string {
	return m.slug
}

// Name - "create", "update" или пустая строка для неподдерживаемого режима.
func (m Mode) Name() string {
	switch {
	case m.IsCreate():
		return "create"
	case m.IsUpdate():
		return "update"
	}
	return ""
}

func (m Mode) String() string {
	switch {
	case m.IsCreate():
		return "create"
	case m.IsUpdate():
		return "update:" + m.slug
	}
	return "unsupported"
}

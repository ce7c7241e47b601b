package drafts

import (
	"log/slog"

	stack_error "github.com/aisa-it/folio/internal/folio/stack-error"
)

type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeValidationFailed OutcomeKind = "validation_failed"
	OutcomeFailure          OutcomeKind = "failure"
	OutcomeUnsupported      OutcomeKind = "unsupported"
)

const (
	successMessage        = "Saved successfully"
	genericFailureMessage = "Failed to save, please try again later"
)

// Outcome - итог одного вызова Save.
type Outcome struct {
	Kind          OutcomeKind
	Resource      Kind
	Mode          Mode
	Message       string
	MissingFields []string
	// Err - причина неудачи для логов, пользователю показывается Message
	Err error
}

// Notifier получает ровно одно уведомление на каждый вызов Save.
type Notifier interface {
	Notify(Outcome)
}

type NotifierFunc func(Outcome)

func (f NotifierFunc) Notify(o Outcome) {
	f(o)
}

// LogNotifier пишет итоги сохранения в лог.
type LogNotifier struct{}

func (LogNotifier) Notify(o Outcome) {
	attrs := []any{"resource", o.Resource, "mode", o.Mode.String(), "outcome", o.Kind}
	switch o.Kind {
	case OutcomeSuccess:
		slog.Info("Draft saved", attrs...)
	case OutcomeValidationFailed:
		slog.Info("Draft validation failed", append(attrs, "missing", o.MissingFields)...)
	default:
		slog.Warn("Draft save failed", append(append(attrs, "message", o.Message), stack_error.Attrs(o.Err)...)...)
	}
}

// MultiNotifier рассылает итог нескольким получателям.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(o Outcome) {
	for _, n := range m {
		n.Notify(o)
	}
}

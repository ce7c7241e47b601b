package drafts

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/go-playground/validator"
)

const documentLabel = "Attachment document"

var metadataValidator = newMetadataValidator()

// ValidationResult - результат проверки метаданных. Вычисляется заново при каждом сохранении.
type ValidationResult struct {
	IsValid       bool     `json:"isValid"`
	MissingFields []string `json:"missingFields"`
}

// Message - одно сообщение для пользователя со списком незаполненных полей.
func (r ValidationResult) Message() string {
	if r.IsValid {
		return ""
	}
	return apierrors.ErrDraftValidationFailure.WithFormattedMessage(strings.Join(r.MissingFields, ", ")).Error()
}

func newMetadataValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	// nil-указатель валидатор отклоняет сам, значение проверяется как идентификатор
	if err := v.RegisterValidation("selected", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() > 0
	}); err != nil {
		panic(err)
	}

	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		m := sl.Current().Interface().(ProjectMetadata)
		if m.paid() && m.SelectedDocumentID == nil {
			sl.ReportError(m.SelectedDocumentID, documentLabel, "SelectedDocumentID", "required_when_paid", "")
		}
	}, ProjectMetadata{})

	return v
}

func ValidateBlogData(m BlogMetadata) ValidationResult {
	return validateMetadata(m)
}

// ValidateProjectData проверяет проект. Документ-вложение требуется, только если цена задана и больше нуля.
func ValidateProjectData(m ProjectMetadata) ValidationResult {
	return validateMetadata(m)
}

func validateMetadata(m any) ValidationResult {
	err := metadataValidator.Struct(m)
	if err == nil {
		return ValidationResult{IsValid: true, MissingFields: []string{}}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		slog.Error("Validate draft metadata", "err", err)
		return ValidationResult{IsValid: false, MissingFields: []string{}}
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return ValidationResult{IsValid: false, MissingFields: missing}
}

package folio

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aisa-it/folio/internal/folio/apierrors"
	"github.com/go-playground/validator"
)

var slugRegexp = regexp.MustCompile(`^[a-z0-9-]+$`)

// RequestValidator проверяет тела запросов API по тегам validate.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("slug", slugValidator); err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		fields := make([]string, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, fe.Field())
		}
		return apierrors.ErrValidation.WithFormattedMessage(strings.Join(fields, ", "))
	}
	return nil
}

func slugValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	lenStr := utf8.RuneCountInString(value)
	if !slugRegexp.MatchString(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 200
}

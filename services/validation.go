package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"team-project/dashboard/apperrors"
)

var (
	requiredTag  = "required"
	requiredText = "is required"
	minTag       = "min"
	minText      = "needs at least one selection"
)

// formValidator runs the required-field checks declared on the form structs.
type formValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newFormValidator() *formValidator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomTranslations(validate, translator, requiredTag, minTag)

	return &formValidator{validate: validate, translator: translator}
}

// registerCustomTranslations overrides the default english messages of tags.
// RegisterTranslation requires a registration func, but the translator already
// holds the defaults, so a noop is passed.
func registerCustomTranslations(validate *validator.Validate, translator ut.Translator, tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateFormErr)
	}
}

func translateFormErr(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case requiredTag:
		return requiredText
	case minTag:
		return minText
	default:
		return ""
	}
}

// Check returns a *apperrors.ValidationError listing every failing field.
func (v *formValidator) Check(form interface{}) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]apperrors.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, apperrors.FieldError{Field: fe.Field(), Message: fe.Translate(v.translator)})
	}
	return apperrors.NewValidationError(fields...)
}

package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	prnTag   = "prn"
	prnText  = "must be a valid enrollment number (eg. PRN2401001)"
	prnRegex = regexp.MustCompile(`^[A-Z0-9]{6,20}$`)

	divisionTag   = "division"
	divisionText  = "must be a single-letter division label"
	divisionRegex = regexp.MustCompile(`^[A-Z]$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(prnTag, prnValidation)
	RegisterCustomTranslation(validate, translator, prnTag, prnText)

	_ = validate.RegisterValidation(divisionTag, divisionValidation)
	RegisterCustomTranslation(validate, translator, divisionTag, divisionText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// prnValidation checks the enrollment-number shape shared by all divisions.
func prnValidation(fl validator.FieldLevel) bool {
	return prnRegex.MatchString(fl.Field().String())
}

func divisionValidation(fl validator.FieldLevel) bool {
	return divisionRegex.MatchString(fl.Field().String())
}

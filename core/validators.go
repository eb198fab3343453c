package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	localesTag  = "locales"
	localesText = "all translations (en, ru, uz) are required"

	requiredTag  = "required"
	requiredText = "this field is required"

	// Locales are the translation keys every localized field must carry.
	Locales = []string{"en", "ru", "uz"}
)

// Instantiate the validator for use.
func init() {
	Validate = validator.New()

	// Register the english error messages for validation errors.
	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(localesTag, localesValidation)
	RegisterCustomTranslation(localesTag, localesText)
	RegisterCustomTranslation(requiredTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// CheckStruct validates `v` and folds any field failures into a
// *ValidationError with translated messages.
func CheckStruct(v interface{}) error {
	if err := Validate.Struct(v); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			flds := make([]FieldError, 0, len(vErrs))
			for _, vErr := range vErrs {
				flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(Translator)})
			}
			return NewValidationError(err, flds...)
		}
		return err
	}
	return nil
}

// Custom Global Validators

// localesValidation requires a locale map to carry a non-blank
// translation for each supported locale.
func localesValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	for _, locale := range Locales {
		val := field.MapIndex(reflect.ValueOf(locale))
		if !val.IsValid() || CleanString(val.String()) == "" {
			return false
		}
	}
	return true
}

package core

import (
	"database/sql/driver"
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	ptbr_translations "github.com/go-playground/validator/v10/translations/pt_BR"
	"github.com/volatiletech/null/v8"
)

var (
	// custom validation tags & texts
	notBlankTag = "notblank"
	requiredTag = "required"
	hexColorTag = "hexcolor"
	oneOfTag    = "oneof"

	// EndBeforeStartTag is reported by struct validations of date ranges ending before they start.
	EndBeforeStartTag = "endbeforestart"

	hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

	customTexts = map[string]map[string]string{
		"en": {
			notBlankTag: "this field cannot be blank",
			requiredTag: "this field is required",
			hexColorTag: "must be a hex color, e.g. #3b82f6",
			oneOfTag:    "must be one of: {0}",

			EndBeforeStartTag: "cannot be before the start date",
		},
		"pt_BR": {
			notBlankTag: "este campo não pode ficar em branco",
			requiredTag: "este campo é obrigatório",
			hexColorTag: "deve ser uma cor hexadecimal, ex.: #3b82f6",
			oneOfTag:    "deve ser um dos valores: {0}",

			EndBeforeStartTag: "não pode ser anterior à data de início",
		},
	}
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	if translator.Locale() == "pt_BR" {
		_ = ptbr_translations.RegisterDefaultTranslations(validate, translator)
	} else {
		_ = en_translations.RegisterDefaultTranslations(validate, translator)
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// nullable types are validated by their underlying value
	validate.RegisterCustomTypeFunc(valuerTypeFunc, Timestamp{}, null.String{}, null.Int{}, null.Float64{}, null.Bool{})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(hexColorTag, hexColorValidation)

	for _, tag := range []string{notBlankTag, requiredTag, hexColorTag, EndBeforeStartTag} {
		RegisterCustomTranslation(validate, translator, tag, LocalizedText(translator, tag), true)
	}
	registerParamTranslation(validate, translator, oneOfTag, LocalizedText(translator, oneOfTag))
}

// LocalizedText returns the custom text of key in the translator's locale, falling back to English.
func LocalizedText(translator ut.Translator, key string) string {
	if texts, ok := customTexts[translator.Locale()]; ok {
		if text, ok := texts[key]; ok {
			return text
		}
	}
	return customTexts["en"][key]
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

func registerParamTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, strings.Join(strings.Fields(fe.Param()), ", "))
			return s
		},
	)
}

func valuerTypeFunc(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		if val, err := valuer.Value(); err == nil {
			return val
		}
	}
	return nil
}

// Custom Global Validators

// notBlankValidation rejects strings made of whitespace only.
func notBlankValidation(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

func hexColorValidation(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

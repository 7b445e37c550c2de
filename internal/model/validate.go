package model

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	trans        ut.Translator
)

// ValidationError lists human-readable problems keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so admin clients can map errors to form fields.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("subject", func(fl validator.FieldLevel) bool {
			return IsKnownSubject(fl.Field().String())
		})
		_ = v.RegisterValidation("classlevel", func(fl validator.FieldLevel) bool {
			return IsKnownClass(fl.Field().String())
		})
		_ = v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
			return slices.Contains(Difficulties, fl.Field().String())
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		for tag, text := range map[string]string{
			"notblank":   "{0} must not be empty",
			"subject":    "{0} is not a known subject",
			"classlevel": "{0} is not a known class",
			"difficulty": "{0} is not a known difficulty",
		} {
			registerTranslation(v, tag, text)
		}

		validate = v
	})
	return validate
}

func registerTranslation(v *validator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// IsKnownSubject reports whether name is a subject name from the catalog.
func IsKnownSubject(name string) bool {
	for _, s := range Subjects {
		if s.Name == name {
			return true
		}
	}
	return false
}

// ValidateQuestion checks the text, the four options and the answer index.
func ValidateQuestion(q Question) error {
	return translate(validatorInstance().Struct(q))
}

// ValidateGeneratedQuestion checks a generator item, including that it
// names its correct answer.
func ValidateGeneratedQuestion(q GeneratedQuestion) error {
	return translate(validatorInstance().Struct(q))
}

// ValidateBankQuestion checks a bank question before it is persisted.
func ValidateBankQuestion(q BankQuestion) error {
	return translate(validatorInstance().Struct(q))
}

// ValidateTest checks a prepared test and every question in it.
func ValidateTest(t Test) error {
	if err := translate(validatorInstance().Struct(t)); err != nil {
		return err
	}
	seen := make(map[string]bool, len(t.Questions))
	for i, q := range t.Questions {
		if q.ID == "" {
			continue
		}
		if seen[q.ID] {
			return &ValidationError{Fields: map[string]string{
				fmt.Sprintf("questions[%d].id", i): "id " + q.ID + " is repeated",
			}}
		}
		seen[q.ID] = true
	}
	return nil
}

// ValidateTestSetup checks a test request after defaults were applied.
func ValidateTestSetup(t TestSetup) error {
	return translate(validatorInstance().Struct(t))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Translate(trans)
	}
	return &ValidationError{Fields: fields}
}

// Package validation проверяет входные данные запросов.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput оборачивает все ошибки валидации.
var ErrInvalidInput = errors.New("invalid input")

// Validator проверяет структуры по тегам validate.
type Validator struct {
	v *validator.Validate
}

// New создаёт валидатор с дополнительными правилами year (четыре цифры)
// и bytesmax (длина строки в байтах, а не в символах).
// В сообщениях используются имена полей из тега json.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		return IsYear(fl.Field().String())
	})

	_ = v.RegisterValidation("bytesmax", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return &Validator{v: v}
}

// Struct проверяет s и возвращает ошибку с перечнем нарушений, обёрнутую в ErrInvalidInput.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// IsYear сообщает, состоит ли s ровно из четырёх цифр.
func IsYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "bytesmax":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "year":
		return field + " must be a 4-digit year"
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

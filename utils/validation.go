package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate   *validator.Validate
	phoneRegex = regexp.MustCompile(`^[0-9]{10,15}$`)
	ifscRegex  = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String())
	})
	_ = validate.RegisterValidation("ifsc", func(fl validator.FieldLevel) bool {
		return ValidateIFSC(fl.Field().String())
	})
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidateIFSC checks the 11-character Indian bank branch code format.
func ValidateIFSC(code string) bool {
	return ifscRegex.MatchString(code)
}

func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

// SanitizeList trims every entry and drops the empty ones.
func SanitizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func FormatValidationError(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs
	}
	for _, fieldError := range validationErrors {
		field := strings.ToLower(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			errs[field] = fmt.Sprintf("%s is required", field)
		case "min":
			errs[field] = fmt.Sprintf("%s must be at least %s characters", field, fieldError.Param())
		case "max":
			errs[field] = fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param())
		case "oneof":
			errs[field] = fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
		case "phone":
			errs[field] = "Phone must be 10 to 15 digits"
		case "ifsc":
			errs[field] = "Invalid IFSC code format"
		case "gtefield":
			errs[field] = fmt.Sprintf("%s must not be before %s", field, strings.ToLower(fieldError.Param()))
		case "numeric":
			errs[field] = fmt.Sprintf("%s must contain digits only", field)
		default:
			errs[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return errs
}

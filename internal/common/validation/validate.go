// internal/common/validation/validate.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report errors against the JSON field names clients actually send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs struct tag validation and reports per-field errors.
func ValidateStruct(v interface{}) *ValidationResult {
	errs := []ValidationError{}

	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, ValidationError{
					Field:   fe.Field(),
					Message: messageFor(fe),
					Code:    codeFor(fe),
				})
			}
		} else {
			errs = append(errs, ValidationError{
				Field:   "",
				Message: err.Error(),
				Code:    "INVALID_INPUT",
			})
		}
	}

	return &ValidationResult{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "email":
		return "value must be a valid email address"
	case "url":
		return "value must be a valid URL"
	case "uuid", "uuid4":
		return "value must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("value must be one of [%s]", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("value must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("value must be >= %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("value must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("value must be <= %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("value must not be less than %s", fe.Param())
	default:
		return fmt.Sprintf("value failed %s constraint", fe.Tag())
	}
}

func codeFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "oneof":
		return "INVALID_ENUM_VALUE"
	case "email", "url", "uuid", "uuid4":
		return "PATTERN_MISMATCH"
	case "min":
		if fe.Kind() == reflect.String {
			return "MIN_LENGTH_VIOLATION"
		}
		return "MINIMUM_VIOLATION"
	case "max":
		if fe.Kind() == reflect.String {
			return "MAX_LENGTH_VIOLATION"
		}
		return "MAXIMUM_VIOLATION"
	default:
		return "CONSTRAINT_VIOLATION"
	}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	emailPattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	phonePattern := regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	return phonePattern.MatchString(phone)
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	urlPattern := regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
	return urlPattern.MatchString(url)
}

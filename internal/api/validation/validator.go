package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/osa911/portfolio-contact/internal/api/dto/common"
	"github.com/osa911/portfolio-contact/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio-contact/internal/api/sanitization"
)

// Field error codes
const (
	CodeFieldRequired = "FIELD_REQUIRED"
	CodeFieldTooShort = "FIELD_TOO_SHORT"
	CodeFieldTooLong  = "FIELD_TOO_LONG"
	CodeInvalidFormat = "INVALID_FORMAT"
)

// local@domain.tld, at least one dot in the domain. Each domain label starts
// and ends with a letter or digit.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

var fieldLabels = map[string]string{
	"name":    "Name",
	"email":   "Email",
	"message": "Message",
}

// FieldError is a single offending field
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// Errors collects every failing field of one submission
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Details converts the errors into the response shape
func (e Errors) Details() []common.ValidationError {
	out := make([]common.ValidationError, len(e))
	for i, fe := range e {
		out[i] = common.ValidationError{Field: fe.Field, Code: fe.Code, Message: fe.Message}
	}
	return out
}

// Has reports whether field failed with code
func (e Errors) Has(field, code string) bool {
	for _, fe := range e {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// Validator checks contact submissions
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom rules registered
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	RegisterValidators(v)
	return &Validator{validate: v}
}

// RegisterValidators registers custom validators
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("email", validateEmail)
}

// validateEmail checks if the email is valid
func validateEmail(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// ValidateContact sanitizes the submission and checks every field. It returns
// the normalized request, or Errors listing all failures. Any other error
// means the validator itself is misconfigured.
func (v *Validator) ValidateContact(req contact.ContactRequest) (contact.ContactRequest, error) {
	normalized := contact.ContactRequest{
		Name:    sanitization.SanitizeLine(req.Name),
		Email:   sanitization.SanitizeEmail(req.Email),
		Message: sanitization.SanitizeText(req.Message),
	}

	err := v.validate.Struct(normalized)
	if err == nil {
		return normalized, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return contact.ContactRequest{}, err
	}

	return contact.ContactRequest{}, FormatValidationError(verrs)
}

// FormatValidationError maps validator failures onto field error codes
func FormatValidationError(verrs validator.ValidationErrors) Errors {
	out := make(Errors, 0, len(verrs))
	for _, e := range verrs {
		field := e.Field()
		label := fieldLabels[field]
		if label == "" {
			label = field
		}

		fe := FieldError{Field: field}
		switch e.Tag() {
		case "required":
			fe.Code = CodeFieldRequired
			fe.Message = label + " is required"
		case "min":
			fe.Code = CodeFieldTooShort
			fe.Message = fmt.Sprintf("%s must be at least %s characters", label, e.Param())
		case "max":
			fe.Code = CodeFieldTooLong
			fe.Message = fmt.Sprintf("%s must be at most %s characters", label, e.Param())
		case "email":
			fe.Code = CodeInvalidFormat
			fe.Message = "Please provide a valid email address"
		default:
			fe.Code = CodeInvalidFormat
			fe.Message = label + " is invalid"
		}
		out = append(out, fe)
	}
	return out
}

// Package validation enforces the payload bounds at the HTTP boundary,
// before either analysis engine runs.
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/quantalabs/analysis-api/apperrors"
)

// Payload bounds. Oversized inputs are rejected up front to bound the work a
// single request can demand.
const (
	MaxNumbers   = 10000
	MaxTextRunes = 50000
)

// PayloadRequest is the decoded POST /payload body. The string min/max tags
// count runes, which matches the code-point definition the text engine uses.
type PayloadRequest struct {
	Numbers []float64 `json:"numbers" validate:"required,min=1,max=10000"`
	Text    string    `json:"text" validate:"required,min=1,max=50000"`
}

// Validator wraps a go-playground validator instance for injection into the
// handlers.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a payload validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidatePayload checks the request bounds, converting the first field
// failure into a ValidationError with a client-facing message.
func (v *Validator) ValidatePayload(req *PayloadRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Internal("payload validation failed", err)
	}

	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Numbers":
			if fe.Tag() == "max" {
				return apperrors.Validation(fmt.Sprintf("numbers array too large (max %d items)", MaxNumbers))
			}
			return apperrors.Validation("numbers array cannot be empty")
		case "Text":
			if fe.Tag() == "max" {
				return apperrors.Validation(fmt.Sprintf("text too long (max %d characters)", MaxTextRunes))
			}
			return apperrors.Validation("text cannot be empty")
		}
	}

	return apperrors.Validation("invalid payload")
}

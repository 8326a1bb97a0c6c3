package validation

import (
	"strings"

	"go-applicant-tracker/internal/domain"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags registered
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("reviewer", ValidReviewer)
	_ = v.RegisterValidation("decision", ValidDecision)
	_ = v.RegisterValidation("not_blank", NotBlank)
}

// ValidReviewer accepts only the fixed reviewer names
func ValidReviewer(fl validator.FieldLevel) bool {
	return domain.Reviewer(fl.Field().String()).Valid()
}

// ValidDecision accepts "Considering" and "Not Considering"
func ValidDecision(fl validator.FieldLevel) bool {
	return domain.Decision(fl.Field().String()).Valid()
}

// NotBlank rejects empty and whitespace-only strings
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

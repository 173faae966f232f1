package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles request and business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator is the name services and handlers take as a dependency
type Validator = BusinessValidator

// New creates the shared validator instance
func New() *Validator {
	return NewBusinessValidator()
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against its tags and registered rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return bv.toValidationErrors(err)
	}
	return nil
}

// ValidateTestCreate validates test definition creation
func (bv *BusinessValidator) ValidateTestCreate(req *TestCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateTestBusinessRules(req)...)

	return errors
}

// ValidateSessionCreate validates session creation
func (bv *BusinessValidator) ValidateSessionCreate(req *SessionCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateSessionUpdate validates the whole-document session update
func (bv *BusinessValidator) ValidateSessionUpdate(req *SessionUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Status != nil && *req.Status != "cancelled" && *req.Status != "submitted" {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "only the cancelled and submitted markers are allowed through update",
			Value:   *req.Status,
			Rule:    "business_logic",
		})
	}

	for questionID := range req.Responses {
		if strings.TrimSpace(questionID) == "" {
			errors = append(errors, ValidationError{
				Field:   "responses",
				Message: "response keys must be non-empty question ids",
				Rule:    "business_logic",
			})
			break
		}
	}

	return errors
}

// registerBusinessRules registers custom rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Time allotted in seconds (1 minute to 8 hours)
	bv.validate.RegisterValidation("test_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 60 && duration <= 28800
	})

	// Max attempts (1-10)
	bv.validate.RegisterValidation("max_attempts", func(fl validator.FieldLevel) bool {
		attempts := fl.Field().Int()
		return attempts >= 1 && attempts <= 10
	})

	// Title (1-200 characters)
	bv.validate.RegisterValidation("test_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Description (max 1000 characters)
	bv.validate.RegisterValidation("test_description", func(fl validator.FieldLevel) bool {
		desc := fl.Field().String()
		return len(desc) <= 1000
	})
}

// validateTestBusinessRules validates rules that span multiple fields
func (bv *BusinessValidator) validateTestBusinessRules(req *TestCreateRequest) ValidationErrors {
	var errors ValidationErrors

	if req.MaxNegMarks < 0 {
		errors = append(errors, ValidationError{
			Field:   "max_neg_marks",
			Message: "must be zero or positive",
			Value:   req.MaxNegMarks,
			Rule:    "business_logic",
		})
	}

	if req.MaxNegMarks > req.Marks {
		errors = append(errors, ValidationError{
			Field:   "max_neg_marks",
			Message: "cannot exceed total marks",
			Value:   req.MaxNegMarks,
			Rule:    "business_logic",
		})
	}

	seen := make(map[string]struct{}, len(req.QuestionPool))
	for i, id := range req.QuestionPool {
		if strings.TrimSpace(id) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("question_pool[%d]", i),
				Message: "question id cannot be empty",
				Rule:    "business_logic",
			})
			continue
		}
		if _, dup := seen[id]; dup {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("question_pool[%d]", i),
				Message: "duplicate question id",
				Value:   id,
				Rule:    "business_logic",
			})
		}
		seen[id] = struct{}{}
	}

	return errors
}

func (bv *BusinessValidator) toValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	for _, fe := range fieldErrors {
		errors = append(errors, ValidationError{
			Field:   fe.Field(),
			Message: bv.getErrorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}

	return errors
}

// getErrorMessage returns user-friendly error messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "test_duration":
		return "must be between 60 and 28800 seconds"
	case "max_attempts":
		return "must be between 1 and 10"
	case "test_title":
		return "must be between 1 and 200 characters"
	case "test_description":
		return "must not exceed 1000 characters"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}

package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/go-playground/validator/v10"
)

var moduleIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewBusinessValidator(now func() time.Time) *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New(), now: now}
	bv.registerBusinessRules()
	return bv
}

// Validate validates struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateStatusTransition validates enrollment status transitions
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.EnrollmentStatus) ValidationErrors {
	allowedTransitions := map[models.EnrollmentStatus][]models.EnrollmentStatus{
		models.EnrollmentNotStarted: {models.EnrollmentInProgress},
		models.EnrollmentInProgress: {models.EnrollmentInProgress, models.EnrollmentCompleted},
		models.EnrollmentCompleted:  {},
		models.EnrollmentExpired:    {},
	}

	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return nil
		}
	}

	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
		Value:   next,
		Rule:    "status_transition",
	}}
}

// ValidateProgressWrite rejects writes that would move progress backwards.
func (bv *BusinessValidator) ValidateProgressWrite(current, next int) ValidationErrors {
	var errs ValidationErrors

	if next < 0 || next > models.FullProgress {
		errs = append(errs, ValidationError{
			Field:   "progress",
			Message: "must be between 0 and 100",
			Value:   next,
			Rule:    "progress_range",
		})
	}
	if next < current {
		errs = append(errs, ValidationError{
			Field:   "progress",
			Message: fmt.Sprintf("cannot decrease progress from %d to %d", current, next),
			Value:   next,
			Rule:    "progress_monotonic",
		})
	}

	return errs
}

// ValidateModuleDefinition checks catalog rules beyond struct tags.
func (bv *BusinessValidator) ValidateModuleDefinition(req *ModuleUpsertRequest) ValidationErrors {
	errs := bv.Validate(req)

	switch req.TriggerType {
	case models.TriggerState, models.TriggerTool, models.TriggerIndustry:
		if len(req.TriggerValues) == 0 {
			errs = append(errs, ValidationError{
				Field:   "trigger_values",
				Message: fmt.Sprintf("%s triggers need at least one value", req.TriggerType),
				Rule:    "business_logic",
			})
		}
	case models.TriggerSize:
		if req.MinEmployees <= 0 {
			errs = append(errs, ValidationError{
				Field:   "min_employees",
				Message: "size triggers need a positive employee threshold",
				Value:   req.MinEmployees,
				Rule:    "business_logic",
			})
		}
	}

	return errs
}

func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("enrollment_status", func(fl validator.FieldLevel) bool {
		switch models.EnrollmentStatus(fl.Field().String()) {
		case models.EnrollmentNotStarted, models.EnrollmentInProgress, models.EnrollmentCompleted, models.EnrollmentExpired:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		return models.DocumentType(fl.Field().String()).Valid()
	})

	bv.validate.RegisterValidation("trigger_type", func(fl validator.FieldLevel) bool {
		switch models.TriggerType(fl.Field().String()) {
		case models.TriggerCore, models.TriggerState, models.TriggerTool, models.TriggerIndustry, models.TriggerSize:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	bv.validate.RegisterValidation("module_id", func(fl validator.FieldLevel) bool {
		id := fl.Field().String()
		return len(id) <= 100 && moduleIDPattern.MatchString(id)
	})

	bv.validate.RegisterValidation("ack_text", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Nil pointers are skipped by omitempty before this runs.
	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return t.After(bv.now())
	})
}

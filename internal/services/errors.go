package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/training-service/internal/models"
)

// Error taxonomy surfaced to callers. Handlers map these to HTTP status codes.
var (
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrEnrollmentNotEligible   = errors.New("enrollment not eligible for acknowledgment")
	ErrDuplicateAcknowledgment = errors.New("acknowledgment already recorded")
	ErrNotFound                = errors.New("not found")
	ErrPersistence             = errors.New("persistence failure")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrValidation              = errors.New("validation failed")
)

var (
	ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrModuleNotFound     = fmt.Errorf("module %w", ErrNotFound)
	ErrDocumentNotFound   = fmt.Errorf("document %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
)

// TransitionError explains why a state change was rejected. It matches
// ErrInvalidTransition with errors.Is.
type TransitionError struct {
	From   models.EnrollmentStatus
	Action string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s enrollment in status %s: %s", e.Action, e.From, e.Reason)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func newTransitionError(from models.EnrollmentStatus, action, reason string) error {
	return &TransitionError{From: from, Action: action, Reason: reason}
}

// NotEligibleError explains why an acknowledgment was refused.
type NotEligibleError struct {
	Reason string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrEnrollmentNotEligible.Error(), e.Reason)
}

func (e *NotEligibleError) Is(target error) bool {
	return target == ErrEnrollmentNotEligible
}

// persistenceError wraps a store failure so that it matches ErrPersistence
// while keeping the cause available to errors.As/Is.
func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// PermissionError records who was refused what. It matches ErrPermissionDenied.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) error {
	return &PermissionError{UserID: userID, ResourceID: resourceID, Resource: resource, Action: action, Reason: reason}
}

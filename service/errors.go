package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInputValidation is matched by every ValidationError
	ErrInputValidation = errors.New("invalid input")
	// ErrInvalidTransition is returned for actions not allowed in the current phase
	ErrInvalidTransition = errors.New("action not allowed in current phase")
)

// ValidationError reports a missing or malformed field. The case is left unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInputValidation
}

func validationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TransitionError names the phase in which an action was rejected
type TransitionError struct {
	Action string
	Phase  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in phase %s", e.Action, e.Phase)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

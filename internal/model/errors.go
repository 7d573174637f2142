package model

import "fmt"

// ValidationError reports missing, malformed, or insufficient caller input.
// It always surfaces to the caller and is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ModelNotTrainedError reports an operation that requires a trained model
// while the service is still in its initial untrained state.
type ModelNotTrainedError struct{}

func (e *ModelNotTrainedError) Error() string {
	return "model not trained: POST normal traffic to /train first"
}

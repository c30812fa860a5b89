package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal error"
	// SearchErrorMessage describes failures of the medical search provider.
	SearchErrorMessage = "medical search failed"
	// CompletionErrorMessage describes failures of the language model provider.
	CompletionErrorMessage = "language model request failed"
	// QuizFormatMessage describes a generated quiz that cannot be graded.
	QuizFormatMessage = "quiz question is missing its correct answer"
)

// ErrMissingCorrectAnswer is returned when a generated quiz has no
// "Correct Answer:" marker line.
var ErrMissingCorrectAnswer = New(errors.New("no correct answer marker"), http.StatusUnprocessableEntity, QuizFormatMessage)

// AppError wraps an underlying error with an HTTP-style status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapSearch wraps a search provider error. A zero status means the
// provider never answered and is reported as a bad gateway.
func WrapSearch(err error, status int) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if status == 0 {
		status = http.StatusBadGateway
	}
	return New(err, status, SearchErrorMessage)
}

// WrapCompletion wraps a chat model error with a consistent status and message.
func WrapCompletion(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, CompletionErrorMessage)
}

// StatusOf returns the status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok && t == e {
		return true
	}
	return errors.Is(e.Err, target)
}

package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	CodeBadRequest           ErrorCode = "BAD_REQUEST"
	CodeValidation           ErrorCode = "VALIDATION_ERROR"
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeDownloadNotCompleted ErrorCode = "DOWNLOAD_NOT_COMPLETED"
	CodeNoFilesToZip         ErrorCode = "NO_FILES_TO_ZIP"
	CodeDirectoryNotFound    ErrorCode = "DIRECTORY_NOT_FOUND"
	CodeZipGenerationFailed  ErrorCode = "ZIP_GENERATION_FAILED"
	CodeYouTubeBadRequest    ErrorCode = "YOUTUBE_BAD_REQUEST"
	CodeYouTubeUnauthorized  ErrorCode = "YOUTUBE_UNAUTHORIZED"
	CodeYouTubeForbidden     ErrorCode = "YOUTUBE_FORBIDDEN"
	CodeYouTubeQuotaExceeded ErrorCode = "YOUTUBE_QUOTA_EXCEEDED"
	CodeYouTubeNotFound      ErrorCode = "YOUTUBE_NOT_FOUND"
	CodeYouTubeNotAuthed     ErrorCode = "YOUTUBE_NOT_AUTHENTICATED"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// Error is a user-facing failure carrying an HTTP status.
type Error struct {
	Err     error
	Details any
	Code    ErrorCode
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error with an explicit code and status.
func NewError(code ErrorCode, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches a cause to the error and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// WithDetails attaches extra context rendered next to the message.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func ErrNotFound(message string) *Error {
	return NewError(CodeNotFound, http.StatusNotFound, message)
}

func ErrBadRequest(message string) *Error {
	return NewError(CodeBadRequest, http.StatusBadRequest, message)
}

func ErrValidation(message string) *Error {
	return NewError(CodeValidation, http.StatusBadRequest, message)
}

func ErrInternal(message string) *Error {
	return NewError(CodeInternal, http.StatusInternalServerError, message)
}

func ErrServiceUnavailable(message string) *Error {
	return NewError(CodeServiceUnavailable, http.StatusServiceUnavailable, message)
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	de, ok := AsError(err)
	return ok && de.Code == code
}

// StatusOf returns the HTTP status for err, 500 for untyped errors.
func StatusOf(err error) int {
	if de, ok := AsError(err); ok && de.Status != 0 {
		return de.Status
	}
	return http.StatusInternalServerError
}

package book

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrResponse struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

func (e ErrResponse) Error() string {
	return e.Message
}

var ErrResponseValidation = ErrResponse{100, "some fields are invalid."}
var ErrResponseBookNotFound = ErrResponse{101, "book not found"}
var ErrResponseGenreNotFound = ErrResponse{102, "unknown genre"}
var ErrResponseDuplicateEntry = ErrResponse{103, "there is already a book with this ISBN."}
var ErrResponseStorageUnavailable = ErrResponse{104, "storage is unavailable right now, try again."}
var ErrResponseFromRepository = ErrResponse{105, "something went wrong, the operation was not completed."}
var ErrResponseInvalidForm = ErrResponse{106, "invalid form request."}
var ErrResponseRequestTimeout = ErrResponse{107, "context deadline exceeded"}

// FieldErrors maps a form field name to every message raised against it.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

type ValidationError struct {
	Fields FieldErrors
}

func NewValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], ", ")))
	}
	return fmt.Sprintf("%s %s", ErrResponseValidation.Message, strings.Join(parts, "; "))
}

/* Lets errors.Is(err, ErrResponseValidation) match any validation failure. */
func (e *ValidationError) Is(target error) bool {
	return target == ErrResponseValidation
}

/* Classify maps err onto the taxonomy code it belongs to. Unknown errors map to ErrResponseFromRepository. */
func Classify(err error) ErrResponse {
	known := []ErrResponse{
		ErrResponseValidation,
		ErrResponseBookNotFound,
		ErrResponseGenreNotFound,
		ErrResponseDuplicateEntry,
		ErrResponseStorageUnavailable,
		ErrResponseRequestTimeout,
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return k
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrResponseRequestTimeout
	}
	return ErrResponseFromRepository
}

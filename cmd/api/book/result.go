package book

import "errors"

// SaveResult is the outcome of a create or update submitted as a form.
type SaveResult struct {
	Success     bool        `json:"success"`
	ID          string      `json:"id,omitempty"`
	Message     string      `json:"message"`
	Code        int         `json:"code,omitempty"`
	FieldErrors FieldErrors `json:"fieldErrors,omitempty"`
	// Created tells a new book apart from an update of an existing one.
	Created bool `json:"-"`
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

/* An unknown genre reference is reported as a validation failure on the genre field. */
func saveFailure(err error) SaveResult {
	code := Classify(err)
	res := SaveResult{Success: false, Code: code.Code, Message: code.Message}

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		res.FieldErrors = ve.Fields
	case code == ErrResponseGenreNotFound:
		res.Code = ErrResponseValidation.Code
		res.Message = ErrResponseValidation.Message
		res.FieldErrors = FieldErrors{FieldGenreID: {ErrResponseGenreNotFound.Message}}
	}
	return res
}

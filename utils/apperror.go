package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an operational error whose message is safe to show to clients.
type AppError struct {
	StatusCode int
	Message    string
	Err        error
}

func NewAppError(message string, statusCode int) *AppError {
	return &AppError{StatusCode: statusCode, Message: message}
}

func Errorf(statusCode int, format string, args ...any) *AppError {
	return &AppError{StatusCode: statusCode, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps err for logging while exposing message.
func Wrap(err error, message string, statusCode int) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Status is "fail" for client errors and "error" for everything else.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

var (
	ErrNotLoggedIn     = NewAppError("You are not logged in! Please log in to get access.", http.StatusUnauthorized)
	ErrForbidden       = NewAppError("You do not have permission to perform this action", http.StatusForbidden)
	ErrNotFound        = NewAppError("No document found with that ID", http.StatusNotFound)
	ErrInvalidLatLng   = NewAppError("Please provide latitude and longitude in the format lat,lng.", http.StatusBadRequest)
	ErrNotAnImage      = NewAppError("Not an image! Please upload only images.", http.StatusBadRequest)
	ErrInvalidToken    = NewAppError("Invalid token. Please log in again!", http.StatusUnauthorized)
	ErrExpiredToken    = NewAppError("Your token has expired! Please log in again.", http.StatusUnauthorized)
	ErrDuplicateField  = NewAppError("Duplicate field value. Please use another value!", http.StatusBadRequest)
	ErrSomethingWrong  = NewAppError("Something went very wrong!", http.StatusInternalServerError)
	ErrTooManyRequests = NewAppError("Too many requests from this IP, please try again in an hour!", http.StatusTooManyRequests)
)

package api

import (
	"fmt"

	"github.com/tair/mediops/internal/schema"
)

// Error body shapes shared by both sides of the wire
var (
	ValidationErrorSchema = schema.Define("ValidationError",
		schema.StringField("message").Required(),
		schema.StringField("field"),
	)
	MessageSchema = schema.Define("Message",
		schema.StringField("message").Required(),
	)
)

// InternalErrorMessage is the only detail a 500 response carries
const InternalErrorMessage = "Internal server error"

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Message string  `json:"message"`
	Field   *string `json:"field,omitempty"`
}

// ValidationFailure is a rejected input value (400)
type ValidationFailure struct {
	Message string
	Field   string
}

func (e *ValidationFailure) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundFailure is an unknown id (404)
type NotFoundFailure struct {
	Message string
}

func (e *NotFoundFailure) Error() string { return "not found: " + e.Message }

// UnauthorizedFailure is a missing or rejected session (401)
type UnauthorizedFailure struct {
	Message string
}

func (e *UnauthorizedFailure) Error() string { return "unauthorized: " + e.Message }

// ContractViolation means a response did not match its declared shape.
// It signals client/server drift and is a programming error.
type ContractViolation struct {
	Route  string
	Status int
	Cause  error
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation on %s (status %d): %v", e.Route, e.Status, e.Cause)
}

func (e *ContractViolation) Unwrap() error { return e.Cause }

// TransportFailure means no response was received
type TransportFailure struct {
	Route string
	Cause error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("transport failure on %s: %v", e.Route, e.Cause)
}

func (e *TransportFailure) Unwrap() error { return e.Cause }

// RequestFailure is any other non-2xx response
type RequestFailure struct {
	Status     int
	StatusText string
	Message    string
}

func (e *RequestFailure) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed: %d %s: %s", e.Status, e.StatusText, e.Message)
	}
	return fmt.Sprintf("request failed: %d %s", e.Status, e.StatusText)
}

// InternalFailure is an unexpected server-side error (500). It also matches
// RequestFailure under errors.As.
type InternalFailure struct {
	RequestFailure
}

func (e *InternalFailure) Error() string { return "internal failure: " + e.Message }

func (e *InternalFailure) Unwrap() error { return &e.RequestFailure }

package services

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// GenerationErrorKind classifies why a course could not be generated.
type GenerationErrorKind string

const (
	KindMissingCredential GenerationErrorKind = "missing_credential"
	KindAdapterFailure    GenerationErrorKind = "adapter_failure"
	KindResponseParse     GenerationErrorKind = "response_parse"
	KindSchemaValidation  GenerationErrorKind = "schema_validation"
)

const (
	msgGenerateFailed    = "Failed to generate course content"
	msgParseFailed       = "Failed to parse course content"
	msgInvalidStructure  = "Invalid response structure"
	msgDescriptionFailed = "Failed to generate description"
)

type GenerationError struct {
	Kind    GenerationErrorKind
	Message string
	Details string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Code is the API error code for the kind.
func (e *GenerationError) Code() string {
	switch e.Kind {
	case KindMissingCredential:
		return "CONFIGURATION_ERROR"
	case KindResponseParse:
		return "PARSE_ERROR"
	case KindSchemaValidation:
		return "SCHEMA_ERROR"
	default:
		return "AI_ERROR"
	}
}

func missingCredential(provider string) *GenerationError {
	return &GenerationError{
		Kind:    KindMissingCredential,
		Message: fmt.Sprintf("%s API key not configured", provider),
	}
}

func adapterFailure(message string, err error) *GenerationError {
	return &GenerationError{Kind: KindAdapterFailure, Message: message, Details: err.Error(), Err: err}
}

func parseFailure(err error) *GenerationError {
	return &GenerationError{Kind: KindResponseParse, Message: msgParseFailed, Details: err.Error(), Err: err}
}

func schemaFailure(format string, args ...interface{}) *GenerationError {
	return &GenerationError{Kind: KindSchemaValidation, Message: msgInvalidStructure, Details: fmt.Sprintf(format, args...)}
}

// AsGenerationError unwraps err to a *GenerationError when it is one.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

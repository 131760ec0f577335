// Package apperror holds the error taxonomy shared by the remote service
// clients, the controllers and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrOperationInProgress = errors.New("operation already in progress")
	ErrBatchInProgress     = errors.New("batch send already in progress")
	ErrSuperseded          = errors.New("result discarded: a newer document was selected")
)

const (
	ReasonUnsupportedMediaType = "unsupported-media-type"
	ReasonMissingSkills        = "missing-skills"
	ReasonMissingPosition      = "missing-position"
	ReasonConfirmationRequired = "confirmation-required"
	ReasonInvalidState         = "invalid-state"
	ReasonUnknownCandidate     = "unknown-candidate"
)

// ValidationError means a caller input violated a precondition. It is always
// raised before any remote call is made.
type ValidationError struct {
	Reason  string
	Message string
}

func NewValidationError(reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Reason, e.Message)
}

// TransportError means the remote call could not complete.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError means the remote call completed but reported failure.
type ServiceError struct {
	Op         string
	Message    string
	StatusCode int
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: service failure (%d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: service failure: %s", e.Op, e.Message)
}

type ExtractionError struct{ Err error }

func (e *ExtractionError) Error() string { return "skill extraction failed: " + UserMessage(e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

type AnalysisError struct{ Err error }

func (e *AnalysisError) Error() string { return "analysis failed: " + UserMessage(e.Err) }
func (e *AnalysisError) Unwrap() error { return e.Err }

// MailError is scoped to a single candidate.
type MailError struct {
	Candidate string
	Err       error
}

func (e *MailError) Error() string {
	return fmt.Sprintf("failed to send email to %s: %s", e.Candidate, UserMessage(e.Err))
}

func (e *MailError) Unwrap() error { return e.Err }

// UserMessage returns the text a notification should show: the service
// message when the remote side supplied one, a generic line otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var svc *ServiceError
	if errors.As(err, &svc) && svc.Message != "" {
		return svc.Message
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "could not reach " + te.Op + " service"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Message != "" {
			return ve.Message
		}
		return ve.Reason
	}
	return err.Error()
}

// IsValidation reports whether err is a ValidationError with the given reason.
// An empty reason matches any validation error.
func IsValidation(err error, reason string) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	return reason == "" || ve.Reason == reason
}

// IsRemote reports whether err came from a remote collaborator.
func IsRemote(err error) bool {
	var te *TransportError
	var se *ServiceError
	return errors.As(err, &te) || errors.As(err, &se)
}

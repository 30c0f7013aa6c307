package errorutil

import (
	"errors"
	"fmt"
)

// Error codes surfaced to command handlers.
const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeDuplicateTicket      = "DUPLICATE_TICKET"
	CodeInvalidStateEncoding = "INVALID_STATE_ENCODING"
	CodeNotTicketChannel     = "NOT_TICKET_CHANNEL"
	CodeTicketNotOpen        = "TICKET_NOT_OPEN"
	CodeClosePending         = "CLOSE_PENDING"
	CodeCollaboratorFailure  = "COLLABORATOR_FAILURE"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeQuotaExceeded        = "QUOTA_EXCEEDED"
	CodeNotFound             = "NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so sentinel values work with errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

func NewUnauthorized(message string) error {
	if message == "" {
		message = "Unauthorized."
	}
	return NewDomainError(CodeUnauthorized, message, nil)
}

// NewDuplicateTicket reports an existing open ticket owned by the requester.
func NewDuplicateTicket(channelID string) error {
	return NewDomainError(CodeDuplicateTicket, "you already have an open ticket", map[string]any{"channel_id": channelID})
}

func NewInvalidStateEncoding(message string, err error) error {
	return &DomainError{Code: CodeInvalidStateEncoding, Message: message, Err: err}
}

func NewNotTicketChannel() error {
	return NewDomainError(CodeNotTicketChannel, "This is not a ticket channel.", nil)
}

func NewTicketNotOpen() error {
	return NewDomainError(CodeTicketNotOpen, "This ticket is not open.", nil)
}

// NewClosePending reports a close already scheduled for the ticket.
func NewClosePending(channelID string) error {
	return NewDomainError(CodeClosePending, "This ticket is already being closed.", map[string]any{"channel_id": channelID})
}

// NewCollaboratorFailure wraps a failed platform call.
func NewCollaboratorFailure(operation string, err error) error {
	return &DomainError{
		Code:    CodeCollaboratorFailure,
		Message: fmt.Sprintf("%s failed", operation),
		Details: map[string]any{"operation": operation},
		Err:     err,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, details)
}

func NewQuotaExceeded(message string, details map[string]any) error {
	return NewDomainError(CodeQuotaExceeded, message, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["resource"] = resource
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: details,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// DetailString returns a string detail value or "".
func (e *DomainError) DetailString(key string) string {
	if e == nil || e.Details == nil {
		return ""
	}
	if v, ok := e.Details[key].(string); ok {
		return v
	}
	return ""
}

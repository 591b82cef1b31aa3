package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error carries one of these so callers can branch with errors.Is.
var (
	ErrValidation            = errors.New("validation failed")
	ErrMissingCountry        = fmt.Errorf("%w: customer country could not be resolved", ErrValidation)
	ErrUnknownAccessCode     = fmt.Errorf("%w: unknown access code", ErrValidation)
	ErrDuplicateSubmission   = errors.New("duplicate submission")
	ErrClientInit            = errors.New("gateway client initialisation failed")
	ErrTransport             = errors.New("gateway transport failure")
	ErrGatewayRejected       = errors.New("gateway rejected request")
	ErrFinalizedSubscription = errors.New("subscription is finalized")
	ErrAlreadyFinalized      = errors.New("contribution already finalized")
	ErrContributionNotFound  = errors.New("contribution not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrProcessorNotFound     = errors.New("payment processor not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrTransactionIncomplete = errors.New("transaction not completed by payer")
	ErrTransactionAbandoned  = fmt.Errorf("%w: hosted page abandoned", ErrTransactionIncomplete)
)

const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeMissingCountry        = "MISSING_COUNTRY"
	ErrCodeUnknownAccessCode     = "UNKNOWN_ACCESS_CODE"
	ErrCodeDuplicateSubmission   = "DUPLICATE_SUBMISSION"
	ErrCodeClientInit            = "CLIENT_INIT_ERROR"
	ErrCodeTransport             = "TRANSPORT_ERROR"
	ErrCodeGatewayRejected       = "GATEWAY_REJECTED"
	ErrCodeFinalizedSubscription = "FINALIZED_SUBSCRIPTION"
	ErrCodeAlreadyFinalized      = "ALREADY_FINALIZED"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeTransactionIncomplete = "TRANSACTION_INCOMPLETE"
	ErrCodeTransactionAbandoned  = "TRANSACTION_ABANDONED"
)

// DuplicateSubmissionMessage is shown to the payer when a form is submitted twice.
const DuplicateSubmissionMessage = "It appears that this transaction is a duplicate. " +
	"Have you already submitted the form once? If so there may have been a connection problem. " +
	"Check your email for a receipt from eWAY. If you do not receive a receipt within 2 hours you can try your transaction again. " +
	"If you continue to have problems please contact the site administrator."

// Error is the typed failure returned across the service boundary.
// Kind identifies the taxonomy entry, Err keeps the underlying cause for logging.
type Error struct {
	Code    string
	Message string
	Details []string
	Kind    error
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the error kind, including kinds that wrap a broader kind
// (a missing country is also a validation error).
func (e *Error) Is(target error) bool {
	if e.Kind == nil {
		return false
	}
	return e.Kind == target || errors.Is(e.Kind, target)
}

func NewValidationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: message,
		Kind:    ErrValidation,
	}
}

func NewMissingCountryError() *Error {
	return &Error{
		Code:    ErrCodeMissingCountry,
		Message: "Not able to retrieve customer's country.",
		Kind:    ErrMissingCountry,
	}
}

func NewUnknownAccessCodeError(accessCode string) *Error {
	return &Error{
		Code:    ErrCodeUnknownAccessCode,
		Message: fmt.Sprintf("access code %s is not linked to a contribution", accessCode),
		Kind:    ErrUnknownAccessCode,
	}
}

func NewDuplicateSubmissionError(invoiceID string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateSubmission,
		Message: DuplicateSubmissionMessage,
		Details: []string{"invoice_id=" + invoiceID},
		Kind:    ErrDuplicateSubmission,
	}
}

func NewClientInitError(messages []string) *Error {
	return &Error{
		Code:    ErrCodeClientInit,
		Message: "Unable to create eWAY client: " + strings.Join(messages, "; "),
		Details: messages,
		Kind:    ErrClientInit,
	}
}

func NewTransportError(message string, cause error) *Error {
	return &Error{
		Code:    ErrCodeTransport,
		Message: message,
		Kind:    ErrTransport,
		Err:     cause,
	}
}

// NewGatewayRejectedError joins the mapped gateway messages in the order the gateway reported them.
func NewGatewayRejectedError(messages []string) *Error {
	return &Error{
		Code:    ErrCodeGatewayRejected,
		Message: strings.Join(messages, "; "),
		Details: messages,
		Kind:    ErrGatewayRejected,
	}
}

func NewFinalizedSubscriptionError(status string) *Error {
	return &Error{
		Code:    ErrCodeFinalizedSubscription,
		Message: fmt.Sprintf("Attempted to update billing details for a %s contribution.", status),
		Details: []string{status},
		Kind:    ErrFinalizedSubscription,
	}
}

func NewAlreadyFinalizedError(contributionID int64) *Error {
	return &Error{
		Code:    ErrCodeAlreadyFinalized,
		Message: fmt.Sprintf("contribution %d has already been finalized", contributionID),
		Kind:    ErrAlreadyFinalized,
	}
}

func NewContributionNotFoundError(id int64) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("contribution with ID %d not found", id),
		Kind:    ErrContributionNotFound,
	}
}

func NewSubscriptionNotFoundError(token string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("recurring contribution with token %s not found", token),
		Kind:    ErrSubscriptionNotFound,
	}
}

func NewProcessorNotFoundError(id int64) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("payment processor %d not found", id),
		Kind:    ErrProcessorNotFound,
	}
}

func NewInvalidTransitionError(from, to ContributionStatus) *Error {
	return &Error{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Kind:    ErrInvalidTransition,
	}
}

func NewTransactionIncompleteError(accessCode string) *Error {
	return &Error{
		Code:    ErrCodeTransactionIncomplete,
		Message: fmt.Sprintf("payer has not completed the transaction for access code %s", accessCode),
		Kind:    ErrTransactionIncomplete,
	}
}

// NewTransactionAbandonedError reports an access code given up on after the payer never
// finished the hosted page. The contribution is left as it was.
func NewTransactionAbandonedError(accessCode string) *Error {
	return &Error{
		Code:    ErrCodeTransactionAbandoned,
		Message: fmt.Sprintf("access code %s was abandoned on the hosted page", accessCode),
		Kind:    ErrTransactionAbandoned,
	}
}

// IsErrorCode checks if an error is a domain Error with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

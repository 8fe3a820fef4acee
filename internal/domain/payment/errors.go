package payment

import "errors"

// TransactionErrorCode enumerates the error codes surfaced by the
// transaction mutation API.
type TransactionErrorCode string

const (
	TransactionErrorGraphQLError        TransactionErrorCode = "GRAPHQL_ERROR"
	TransactionErrorIncorrectCurrency   TransactionErrorCode = "INCORRECT_CURRENCY"
	TransactionErrorInvalid             TransactionErrorCode = "INVALID"
	TransactionErrorMetadataKeyRequired TransactionErrorCode = "METADATA_KEY_REQUIRED"
	TransactionErrorNotFound            TransactionErrorCode = "NOT_FOUND"
	TransactionErrorUnique              TransactionErrorCode = "UNIQUE"
)

// String returns the string representation of the code
func (c TransactionErrorCode) String() string {
	return string(c)
}

// TransactionError is a structured, user-facing error record returned by the
// transaction mutation. Field names the input field that failed validation.
type TransactionError struct {
	Field   string               `json:"field"`
	Message string               `json:"message"`
	Code    TransactionErrorCode `json:"code"`
}

// Error implements the error interface
func (e *TransactionError) Error() string {
	return e.Message
}

// NewTransactionError creates a new transaction error record
func NewTransactionError(field string, code TransactionErrorCode, message string) *TransactionError {
	return &TransactionError{
		Field:   field,
		Code:    code,
		Message: message,
	}
}

// Sentinel errors returned by repositories. The application layer maps them
// to TransactionError records with the proper field attribution.
var (
	// ErrDuplicatePSPReference signals that another transaction already
	// carries the submitted psp reference.
	ErrDuplicatePSPReference = errors.New("psp reference already used by another transaction")
	// ErrDuplicateEventPSPReference signals that another transaction event
	// already carries the submitted psp reference.
	ErrDuplicateEventPSPReference = errors.New("psp reference already used by another transaction event")
)

package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/jrsteele09/go-finance-client/internal/errors"
)

// GenericErrorMessage is shown when a failure carries no usable detail.
const GenericErrorMessage = "Erro de comunicação com o servidor"

// ErrorKind classifies a failed operation.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"      // Rejected locally, no request was sent
	KindBackend        ErrorKind = "backend"         // The backend answered with an error status
	KindNetwork        ErrorKind = "network"         // No response was received
	KindSessionExpired ErrorKind = "session_expired" // The backend rejected the stored bearer token
)

// APIError is the single error type screens receive from the gateway.
type APIError struct {
	Kind   ErrorKind
	Status int    // HTTP status, zero for validation and network errors
	Detail string // Human-readable detail from the backend or the validation message
	Err    error  // Underlying transport or decoding error
}

var _ error = (*APIError)(nil)

// Validation builds a local validation error.
func Validation(message string) *APIError {
	return &APIError{Kind: KindValidation, Detail: message}
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message())
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message())
	}
}

// Message returns the detail when present, otherwise the generic message.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return GenericErrorMessage
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets callers match kinds against the shared sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case apperrors.ErrValidation:
		return e.Kind == KindValidation
	case apperrors.ErrSessionExpired:
		return e.Kind == KindSessionExpired
	}
	return false
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// MessageOr returns the error's detail, or fallback when there is none.
func MessageOr(err error, fallback string) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// extractDetail reads the "detail" member of an error body. FastAPI sends a
// string for HTTPException and a list of {msg} objects for request validation.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

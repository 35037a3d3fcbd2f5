// Package callable carries the request/response conventions of the Sedifex
// callable endpoints: Firebase-style error codes with stable, user-safe
// messages, mapped onto HTTP status codes at the edge.
package callable

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is the structured failure returned by a callable endpoint.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Callable error codes in use. These mirror the Firebase HTTPS error set the
// web client already understands.
const (
	CodeInvalidArgument    = "invalid-argument"
	CodeUnauthenticated    = "unauthenticated"
	CodePermissionDenied   = "permission-denied"
	CodeNotFound           = "not-found"
	CodeFailedPrecondition = "failed-precondition"
	CodeResourceExhausted  = "resource-exhausted"
	CodeUnavailable        = "unavailable"
	CodeInternal           = "internal"
)

var httpStatusByCode = map[string]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeUnauthenticated:    http.StatusUnauthorized,
	CodePermissionDenied:   http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeFailedPrecondition: http.StatusPreconditionFailed,
	CodeResourceExhausted:  http.StatusTooManyRequests,
	CodeUnavailable:        http.StatusServiceUnavailable,
	CodeInternal:           http.StatusInternalServerError,
}

// HTTPStatus maps a callable error code to its HTTP status. Unknown codes
// map to 500.
func HTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// genericMessage is returned for failures the caller cannot act on. Raw
// transport and storage errors never reach the client.
const genericMessage = "Something went wrong. Please try again."

// WriteError renders err as a callable error payload. Non-callable errors
// are collapsed into a generic internal error so transport detail never
// leaks to the UI.
func WriteError(w http.ResponseWriter, err error) {
	var ce *Error
	if !errors.As(err, &ce) {
		ce = New(CodeInternal, genericMessage)
	}
	Respond(w, HTTPStatus(ce.Code), map[string]interface{}{"error": ce})
}

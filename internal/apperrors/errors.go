package apperrors

import (
	"errors"
	"net/http"
)

// Error is a domain error with a stable HTTP status. Handlers translate
// anything that is not an *Error into a generic 500 so storage details never
// reach the client.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrDuplicateIdentity     = &Error{Status: http.StatusBadRequest, Message: "Username or email already in use"}
	ErrInvalidCredentials    = &Error{Status: http.StatusBadRequest, Message: "Invalid credentials"}
	ErrEmailNotVerified      = &Error{Status: http.StatusBadRequest, Message: "Email not verified"}
	ErrInvalidOrExpiredToken = &Error{Status: http.StatusBadRequest, Message: "Invalid or expired token"}
	ErrNotFound              = &Error{Status: http.StatusNotFound, Message: "Not found"}
	ErrSelfFollow            = &Error{Status: http.StatusBadRequest, Message: "Cannot follow yourself"}
	ErrAlreadyFollowing      = &Error{Status: http.StatusBadRequest, Message: "Already following this user"}
	ErrNotFollowing          = &Error{Status: http.StatusBadRequest, Message: "Not following this user"}
	ErrAlreadyInList         = &Error{Status: http.StatusBadRequest, Message: "Game already in playlist"}
	ErrNotInList             = &Error{Status: http.StatusBadRequest, Message: "Game not in playlist"}
	ErrDuplicateReview       = &Error{Status: http.StatusBadRequest, Message: "Review for this game already exists"}
	ErrUnauthenticated       = &Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden             = &Error{Status: http.StatusForbidden, Message: "Forbidden"}
)

// Validation builds a 400 error with a field-specific message.
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// StatusOf returns the HTTP status for err: the embedded status for domain
// errors, 500 for everything else.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-facing message for err. Non-domain errors map
// to a generic message; their detail is for server logs only.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Server error"
}

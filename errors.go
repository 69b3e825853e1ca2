package bookshelf

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds     = "INVALID_CREDENTIALS"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
	TextCodeBadSignature     = "TOKEN_BAD_SIGNATURE"
	TextCodeTokenMissing     = "TOKEN_MISSING"
	TextCodeEmptyPassword    = "EMPTY_PASSWORD"
	TextCodeUsernameTaken    = "USERNAME_TAKEN"
	TextCodeInsufficientRole = "INSUFFICIENT_ROLE"
	TextCodeBookNotFound     = "BOOK_NOT_FOUND"
	TextCodeIdentityNotFound = "IDENTITY_NOT_FOUND"
)

// ErrMismatchedHashAndPassword is the generic failure for both unknown
// usernames and wrong passwords, so callers cannot enumerate accounts.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrTokenExpired is returned when a token is past its expiry claim
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned when a token cannot be parsed
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrTokenSignatureInvalid is returned when the claims do not match the signature
var ErrTokenSignatureInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeBadSignature)

// ErrTokenMissing is returned when a guarded route receives no bearer token
var ErrTokenMissing = errors.New("missing or malformed bearer token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrUsernameTaken is the conflict raised by duplicate registrations
var ErrUsernameTaken = errors.New("username is already registered", errors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken)

// ErrInsufficientRole is raised when the route policy requires a higher role
var ErrInsufficientRole = errors.New("insufficient role for this resource", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole)

// ErrBookNotFound is returned for unknown book ids
var ErrBookNotFound = errors.New("book not found", errors.CategoryNotFound).
	WithTextCode(TextCodeBookNotFound)

// ErrIdentityNotFound is the error we return for not found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrorToStatus is the single place where error categories become HTTP
// status codes.
func ErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the uniform error shape surfaced at the HTTP boundary.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse builds the boundary payload for err. Internal causes are
// replaced with a generic message so storage driver errors never leak.
func ErrorResponse(err error) (int, ErrorBody) {
	status := ErrorToStatus(err)

	message := "An unexpected server error occurred"
	if status != http.StatusInternalServerError {
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Message != "" {
			message = richErr.Message
		}
	}

	return status, ErrorBody{Status: status, Message: message}
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return false
}

// IsMalformedError will check for unparseable tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenMalformed
	}
	return false
}

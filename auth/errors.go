package auth

import "github.com/goliatone/go-errors"

const (
	TextCodeTokenExpired       = "AUTH_TOKEN_EXPIRED"
	TextCodeTokenBadSignature  = "AUTH_TOKEN_BAD_SIGNATURE"
	TextCodeTokenMalformed     = "AUTH_TOKEN_MALFORMED"
	TextCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	TextCodeInvalidRefresh     = "AUTH_INVALID_REFRESH_TOKEN"
	TextCodeAccountResigned    = "AUTH_ACCOUNT_RESIGNED"
	TextCodeEmptyPassword      = "AUTH_EMPTY_PASSWORD"

	// TextCodeRefreshTokenStale marks a compare-and-swap rotation that
	// matched no row; stores use it, the session manager translates it to
	// ErrInvalidRefreshToken.
	TextCodeRefreshTokenStale = "AUTH_REFRESH_TOKEN_STALE"
)

// ErrTokenExpired is returned when the session token is past its expiry.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeBadRequest)

// ErrTokenBadSignature is returned when the token signature does not verify.
var ErrTokenBadSignature = errors.New("session token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSignature).
	WithCode(errors.CodeBadRequest)

// ErrTokenMalformed is returned for tokens that cannot be parsed at all.
var ErrTokenMalformed = errors.New("session token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeBadRequest)

// ErrInvalidCredentials is returned for unknown usernames and password
// mismatches alike, so callers cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid username or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrInvalidRefreshToken is returned when the presented refresh token does not
// match the stored value. Covers logout, prior rotation and forgery.
var ErrInvalidRefreshToken = errors.New("refresh token is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefresh).
	WithCode(errors.CodeBadRequest)

// ErrAccountResigned is returned when the account reached its terminal status.
var ErrAccountResigned = errors.New("account has been resigned", errors.CategoryAuth).
	WithTextCode(TextCodeAccountResigned).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

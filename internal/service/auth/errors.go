// Package auth provides authentication services: JWT token issue and
// validation for both API bearer tokens and the web session cookie, and
// bcrypt password hashing/verification.
package auth

import "errors"

// Authentication errors returned by the JWT service.
var (
	// ErrInvalidToken is returned when a token fails validation for any
	// reason other than expiry (bad signature, malformed, wrong claims).
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token's expiry time has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's not-before time is
	// in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrInvalidRefreshToken is returned when a refresh token fails validation.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken is returned when a refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")

	// ErrWrongTokenType is returned when an access token is presented
	// where a refresh token is expected, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

package session

import "errors"

var (
	// ErrIDGeneration is returned when random id generation fails.
	ErrIDGeneration = errors.New("failed to generate session id")
	// ErrSecretTooShort is returned when a token store secret doesn't meet
	// the minimum length requirement.
	ErrSecretTooShort = errors.New("token secret must be at least 32 bytes")
	// ErrInvalidToken is returned internally when a token fails signature
	// or integrity verification. It never escapes Resolve.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrEncodeToken is returned when session data cannot be serialized
	// into a token.
	ErrEncodeToken = errors.New("failed to encode session token")
	// ErrWriteSession is returned when persisting session data fails.
	ErrWriteSession = errors.New("failed to write session")
	// ErrDeleteSession is returned when deleting session data fails.
	ErrDeleteSession = errors.New("failed to delete session")
)

package services

import "errors"

var (
	// ErrCastNotFound is returned when an upstream affirmatively has no cast for the identifier
	ErrCastNotFound = errors.New("cast not found")

	// ErrUserNotFound is returned when a handle does not map to a user
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidParameters is returned when the identifying parameters select no lookup
	ErrInvalidParameters = errors.New("invalid parameters")
)

// Error codes carried by upstream ServiceErrors
const (
	CodeCastResolutionFailed = "CAST_RESOLUTION_FAILED"
	CodeGraphQLFailed        = "GRAPHQL_REQUEST_FAILED"
	CodeNeynarFailed         = "NEYNAR_REQUEST_FAILED"
	CodeWarpcastFailed       = "WARPCAST_REQUEST_FAILED"
)

// Error codes for lookups that complete without a result
const (
	CodeCastNotFound      = "CAST_NOT_FOUND"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeInvalidParameters = "INVALID_PARAMETERS"
)

// Error codes for best-effort cache operations
const (
	CodeCacheReadFailed  = "CACHE_READ_FAILED"
	CodeCacheWriteFailed = "CACHE_WRITE_FAILED"
)

const userAgent = "farcaster-gateway/1.0"

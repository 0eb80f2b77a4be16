package errors

// Common error codes
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrRateLimited     = "RATE_LIMITED"
	// ErrUpstream marks a failure reported by, or while talking to, a remote API.
	ErrUpstream = "UPSTREAM"
)

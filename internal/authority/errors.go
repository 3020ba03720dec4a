package authority

import "errors"

// Sentinel errors returned by Service. The HTTP layer maps them to status codes.
var (
	ErrNotStarted      = errors.New("authority not started")
	ErrItemNotFound    = errors.New("item not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthorized    = errors.New("invalid or missing token")
	ErrInvalidScore    = errors.New("invalid score")
	ErrInvalidComment  = errors.New("invalid comment")
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidUser     = errors.New("invalid user")
	ErrInvalidPage     = errors.New("invalid pagination parameters")
	ErrStoreFailure   = errors.New("ranking store failure")
)

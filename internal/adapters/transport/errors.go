package transport

import "errors"

// ErrInvalidBaseURL is returned by New when the base URL cannot be used.
var ErrInvalidBaseURL = errors.New("invalid base url")

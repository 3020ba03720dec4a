package repository

import "errors"

// Sentinel kinds for ranking store errors.
var (
	ErrNotFound      = errors.New("user not ranked")
	ErrInvalidLimit  = errors.New("invalid ranking limit")
	ErrInvalidOffset = errors.New("invalid ranking offset")
)

package dto

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrInternalFailure = errors.New("internal failure")
)

package services

import "errors"

// Sentinel errors shared across services. Controllers map these onto HTTP
// status codes; everything else is logged and answered with a generic 500.
var (
	ErrValidation    = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("upstream quota exceeded")
)

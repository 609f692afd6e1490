// File: /services/errors.go
package services

import "errors"

// Failure taxonomy shared by the friend and message services. Each
// service detects and reports its own validation and authorization
// failures synchronously; storage and asset-store failures are wrapped
// as ErrDependency and propagate unchanged otherwise. Nothing here is
// retried automatically.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("operation not allowed")
	ErrConflict   = errors.New("conflicting state")
	ErrValidation = errors.New("invalid input")
	ErrDependency = errors.New("dependency failure")
)

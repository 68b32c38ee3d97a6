package shared

import "errors"

var (
	// ErrUnauthenticated indicates no resolvable identity on the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied indicates the identity lacks a required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)

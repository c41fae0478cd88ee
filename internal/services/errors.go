package services

import (
	"errors"
	"fmt"
)

// Sentinel failures surfaced by the services layer. Handlers translate
// them to HTTP status codes; services never touch fiber.
var (
	// ErrNotFound covers genuinely missing rows and rows the caller must
	// not learn about: cross-tenant lookups and other users' personal
	// resources report not-found rather than forbidden.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is an in-tenant permission denial on a resource the
	// caller is allowed to know exists.
	ErrUnauthorized = errors.New("access denied")

	// ErrTenantMismatch rejects a move whose destination belongs to a
	// different tenant than the resource.
	ErrTenantMismatch = errors.New("tenant mismatch")

	// ErrVisibilityMismatch rejects a move across the public/personal
	// partition.
	ErrVisibilityMismatch = errors.New("invalid tab context")

	// ErrInvalidParent rejects a parent reference that does not resolve
	// within the caller's tenant and visibility.
	ErrInvalidParent = errors.New("invalid parent folder")

	// ErrInvalidCycle rejects a folder move under its own descendant.
	ErrInvalidCycle = errors.New("cannot move a folder into itself")

	ErrInvalidName   = errors.New("invalid name")
	ErrDuplicateName = errors.New("name already exists here")

	// ErrInvalidTimeRange rejects windows that end before they start.
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// StorageError wraps an object backend failure so callers can distinguish
// infrastructure faults from domain rejections. A StorageError inside a
// transaction rolls the whole operation back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

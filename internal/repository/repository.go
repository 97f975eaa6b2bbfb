// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.
package repository

import "errors"

var (
	// ErrNotFound is returned when the addressed row does not exist, including
	// updates and deletes that affect zero rows.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("repository: conflict")
)

// PageQuery holds limit/offset pagination parameters.
// A Limit of zero or less asks for the total count only.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

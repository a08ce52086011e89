package entity

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a dependent record already exists for its parent.
	ErrConflict = errors.New("record already exists")
)

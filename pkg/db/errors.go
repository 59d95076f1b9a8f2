package db

import "errors"

var (
	// ErrNotFound is returned when a lookup by id or key matches no record
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyRegistered is returned when an auth user already exists
	ErrAlreadyRegistered = errors.New("already registered")
)

package repository

import "errors"

// Sentinel kinds for model store errors.
var (
	// ErrNotFound marks an unknown bundle identity.
	ErrNotFound = errors.New("bundle not found")

	// ErrNoActiveBundle marks the absence of an active bundle; surfaced
	// to callers as a service-unavailable condition.
	ErrNoActiveBundle = errors.New("no active bundle")

	// ErrPersistence marks bundle save/load I/O failures. The failed
	// operation never leaves a partially written bundle behind.
	ErrPersistence = errors.New("bundle persistence failed")

	// ErrInvalidState marks a disallowed lifecycle transition.
	ErrInvalidState = errors.New("invalid bundle state transition")
)

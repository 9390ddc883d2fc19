package ecs

import "errors"

var (
	// ErrNotFound is returned when an entity lacks the requested component.
	ErrNotFound = errors.New("ecs: component not found")
	// ErrAlreadyPresent is returned by Emplace when the component already exists.
	ErrAlreadyPresent = errors.New("ecs: component already present")
	// ErrInvalidEntity is returned for destroyed, stale or null entity ids.
	ErrInvalidEntity = errors.New("ecs: invalid entity")
)

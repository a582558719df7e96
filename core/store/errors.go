package store

import "errors"

var (
	// ErrCollectionExists is returned when adding a collection that is already known.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrCollectionNotFound is returned when mutating or removing an unknown collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrUnknownPillar is returned when a pillar is not configured for the collection.
	ErrUnknownPillar = errors.New("pillar is not configured for collection")
	// ErrConfigMismatch is returned at construction when the persisted pillar set of a
	// collection disagrees with the configured one.
	ErrConfigMismatch = errors.New("collection pillar configuration mismatch")
	// ErrInvalidArgument is returned for empty identifiers and malformed ranges.
	ErrInvalidArgument = errors.New("invalid argument")
)

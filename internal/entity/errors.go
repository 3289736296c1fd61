package entity

import "errors"

var (
	ErrUnknownType      = errors.New("unknown entity type")
	ErrAlreadyAttached  = errors.New("entity is already attached")
	ErrNotAttached      = errors.New("entity is not attached to this manager")
	ErrDuplicateKey     = errors.New("an entity with the same key is already attached")
	ErrIncompleteKey    = errors.New("entity key is incomplete")
	ErrInvalidState     = errors.New("invalid entity state")
	ErrInvalidDocument  = errors.New("invalid entity document")
	ErrUnknownProperty  = errors.New("unknown property")
	ErrNotComplexObject = errors.New("value is not a complex object")
	ErrReadOnly         = errors.New("complex collection properties cannot be replaced")
)

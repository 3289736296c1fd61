package save

import (
	"errors"
	"fmt"
)

var (
	ErrDetached          = errors.New("entity is not attached")
	ErrUnknownEntityType = errors.New("entity type is not in the catalog")
	ErrInvalidResponse   = errors.New("invalid save response")
)

// SerializationError reports an entity that cannot go into a save bundle.
// Nothing is sent when it occurs.
type SerializationError struct {
	TypeName string
	Err      error
}

func (e *SerializationError) Error() string {
	if e.TypeName == "" {
		return "failed to serialize entity: " + e.Err.Error()
	}

	return fmt.Sprintf("failed to serialize %s: %s", e.TypeName, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// TransportFailure wraps the error returned by the transport unchanged.
type TransportFailure struct {
	ResourceName string
	Err          error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("save to %s failed: %s", e.ResourceName, e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}

// SaveResponseError reports a response that could not be parsed or that
// references types the catalog does not know.
type SaveResponseError struct {
	Reason string
	Err    error
}

func (e *SaveResponseError) Error() string {
	if e.Err == nil {
		return "invalid save response: " + e.Reason
	}

	return fmt.Sprintf("invalid save response: %s: %s", e.Reason, e.Err)
}

func (e *SaveResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidResponse}
	}

	return []error{ErrInvalidResponse, e.Err}
}

func responseErr(err error, format string, args ...any) *SaveResponseError {
	return &SaveResponseError{Reason: fmt.Sprintf(format, args...), Err: err}
}

// EntityError is one entity-addressed validation message from the server.
type EntityError struct {
	ErrorName      string
	EntityTypeName string
	KeyValues      []any
	PropertyName   string
	ErrorMessage   string
}

// ServerValidationRejection is returned when the server refuses a save
// with validation messages. Entity state is left untouched.
type ServerValidationRejection struct {
	Message      string
	EntityErrors []EntityError
}

func (e *ServerValidationRejection) Error() string {
	msg := e.Message
	if msg == "" && len(e.EntityErrors) > 0 {
		msg = e.EntityErrors[0].ErrorMessage
	}

	return fmt.Sprintf("save rejected by server: %s (%d entity errors)", msg, len(e.EntityErrors))
}

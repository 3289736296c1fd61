package metadata

import (
	"errors"
	"strings"
)

var (
	ErrInvalidDescriptor         = errors.New("invalid mapping descriptors")
	ErrUnresolvedForeignKey      = errors.New("unresolved foreign key")
	ErrUnknownIdentifierStrategy = errors.New("unknown identifier strategy")
	ErrUnknownType               = errors.New("unknown type")
	ErrDuplicateType             = errors.New("duplicate type")
	ErrInheritanceCycle          = errors.New("inheritance cycle")
)

// MappingError reports a failure to build the catalog from descriptors.
// It is fatal to that build.
type MappingError struct {
	TypeName string
	Property string
	Err      error
}

func (e *MappingError) Error() string {
	var sb strings.Builder

	sb.WriteString("mapping error")

	if e.TypeName != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.TypeName)

		if e.Property != "" {
			sb.WriteString(".")
			sb.WriteString(e.Property)
		}
	}

	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())

	return sb.String()
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

func mappingErr(typeName, property string, err error) *MappingError {
	return &MappingError{TypeName: typeName, Property: property, Err: err}
}

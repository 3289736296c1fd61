package metadata

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=AutoGeneratedKeyType -trimprefix=KeyType -output=keytype_string.go

// AutoGeneratedKeyType tells how the store assigns an entity's key.
type AutoGeneratedKeyType int

const (
	// KeyTypeNone means the client assigns the key.
	KeyTypeNone AutoGeneratedKeyType = iota
	// KeyTypeIdentity means the store generates the key on insert.
	KeyTypeIdentity
	// KeyTypeKeyGenerator means a server-side generator supplies the key.
	KeyTypeKeyGenerator
)

// ParseAutoGeneratedKeyType parses the wire name of a key type.
func ParseAutoGeneratedKeyType(s string) (AutoGeneratedKeyType, error) {
	switch s {
	case "None", "":
		return KeyTypeNone, nil
	case "Identity":
		return KeyTypeIdentity, nil
	case "KeyGenerator":
		return KeyTypeKeyGenerator, nil
	default:
		return KeyTypeNone, fmt.Errorf("unknown auto-generated key type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k AutoGeneratedKeyType) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AutoGeneratedKeyType) UnmarshalText(text []byte) error {
	v, err := ParseAutoGeneratedKeyType(string(text))
	if err != nil {
		return err
	}

	*k = v

	return nil
}

// KeyTypeForStrategy maps an identifier generation strategy to a key type.
func KeyTypeForStrategy(strategy string) (AutoGeneratedKeyType, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "identity":
		return KeyTypeIdentity, nil
	case "", "assigned":
		return KeyTypeNone, nil
	case "sequence", "hilo", "seqhilo", "guid", "guid.comb", "uuid",
		"increment", "native", "foreign", "keygenerator":
		return KeyTypeKeyGenerator, nil
	default:
		return KeyTypeNone, fmt.Errorf("%w: %q", ErrUnknownIdentifierStrategy, strategy)
	}
}

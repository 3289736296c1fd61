// Package primitive classifies Go value types and names the mapping data
// type each one travels as.
package primitive

import (
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindBytes
	KindUUID
	KindPrimitiveEnum // alias to any integer number or string

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only numeric kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt, KindUint:
		power := 0
		for n := uint(math.MaxUint); n > 0; n >>= 1 {
			power++
		}
		return power
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	case KindInt64, KindUint64:
		return 64
	case KindFloat32:
		return 32
	case KindFloat64:
		return 64
	}
}

// DataType returns the mapping data type name for the kind. Unsigned
// integers map to the narrowest signed type that holds every value.
// Primitive enums have no fixed data type and return "".
func (k KindEnum) DataType() string {
	switch k {
	case KindUint8:
		return "Byte"
	case KindInt8, KindInt16:
		return "Int16"
	case KindInt32, KindUint16:
		return "Int32"
	case KindInt, KindInt64, KindUint, KindUint32, KindUint64:
		return "Int64"
	case KindFloat32:
		return "Single"
	case KindFloat64:
		return "Double"
	case KindBool:
		return "Boolean"
	case KindString:
		return "String"
	case KindTime:
		return "DateTime"
	case KindDuration:
		return "Time"
	case KindBytes:
		return "Binary"
	case KindUUID:
		return "Guid"
	default:
		return ""
	}
}

var byTypeName = map[string]KindEnum{
	"int":                         KindInt,
	"int8":                        KindInt8,
	"int16":                       KindInt16,
	"int32":                       KindInt32,
	"int64":                       KindInt64,
	"uint":                        KindUint,
	"uint8":                       KindUint8,
	"byte":                        KindUint8,
	"uint16":                      KindUint16,
	"uint32":                      KindUint32,
	"uint64":                      KindUint64,
	"float32":                     KindFloat32,
	"float64":                     KindFloat64,
	"bool":                        KindBool,
	"string":                      KindString,
	"time.Time":                   KindTime,
	"time.Duration":               KindDuration,
	"[]byte":                      KindBytes,
	"[]uint8":                     KindBytes,
	"github.com/google/uuid.UUID": KindUUID,
}

// FromTypeName classifies a type by its go/types spelling, e.g. "int32",
// "time.Time" or "github.com/google/uuid.UUID".
func FromTypeName(name string) KindEnum {
	return byTypeName[name]
}

func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	// check if true primitive type
	switch rtype {
	case reflect.TypeOf(int(0)):
		return KindInt
	case reflect.TypeOf(int8(0)):
		return KindInt8
	case reflect.TypeOf(int16(0)):
		return KindInt16
	case reflect.TypeOf(int32(0)):
		return KindInt32
	case reflect.TypeOf(int64(0)):
		return KindInt64
	case reflect.TypeOf(uint(0)):
		return KindUint
	case reflect.TypeOf(uint8(0)):
		return KindUint8
	case reflect.TypeOf(uint16(0)):
		return KindUint16
	case reflect.TypeOf(uint32(0)):
		return KindUint32
	case reflect.TypeOf(uint64(0)):
		return KindUint64
	case reflect.TypeOf(float32(0)):
		return KindFloat32
	case reflect.TypeOf(float64(0)):
		return KindFloat64
	case reflect.TypeOf(false):
		return KindBool
	case reflect.TypeOf(""):
		return KindString
	case reflect.TypeOf(time.Time{}):
		return KindTime
	case reflect.TypeOf(time.Duration(0)):
		return KindDuration
	case reflect.TypeOf([]byte(nil)):
		return KindBytes
	case reflect.TypeOf(uuid.UUID{}):
		return KindUUID
	}

	// check if it's a primitive enum type
	switch rtype.Kind() {
	default:
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.String:
		return KindPrimitiveEnum
	}
}

// DataTypeOf names the mapping data type of a Go type. Pointers are
// unwrapped and reported as nullable; enums take the data type of their
// underlying kind. ok is false for types with no scalar mapping.
func DataTypeOf(rtype reflect.Type) (dataType string, nullable, ok bool) {
	if rtype == nil {
		return "", false, false
	}

	for rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
		nullable = true
	}

	kind := FromReflectType(rtype)
	if kind == KindPrimitiveEnum {
		switch rtype.Kind() {
		case reflect.String:
			kind = KindString
		case reflect.Int8, reflect.Int16:
			kind = KindInt16
		case reflect.Int32:
			kind = KindInt32
		default:
			kind = KindInt64
		}
	}

	dataType = kind.DataType()

	return dataType, nullable || kind == KindBytes, dataType != ""
}

package primitive_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"entity-sync/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(uuid.UUID{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindPrimitiveEnum
	// KindPrimitiveEnum
	// KindDuration
	// KindTime
	// KindUUID
	// KindEnum(0)
}

type status int16

type code string

func TestDataTypeOf(t *testing.T) {
	tests := []struct {
		value    any
		dataType string
		nullable bool
		ok       bool
	}{
		{int32(0), "Int32", false, true},
		{int(0), "Int64", false, true},
		{uint8(0), "Byte", false, true},
		{uint16(0), "Int32", false, true},
		{float32(0), "Single", false, true},
		{1.5, "Double", false, true},
		{true, "Boolean", false, true},
		{"", "String", false, true},
		{time.Time{}, "DateTime", false, true},
		{time.Duration(0), "Time", false, true},
		{[]byte(nil), "Binary", true, true},
		{uuid.UUID{}, "Guid", false, true},
		{new(string), "String", true, true},
		{new(*time.Time), "DateTime", true, true},
		{status(0), "Int16", false, true},
		{code(""), "String", false, true},
		{struct{}{}, "", false, false},
		{[]string(nil), "", false, false},
	}

	for _, tt := range tests {
		rtype := reflect.TypeOf(tt.value)

		t.Run(rtype.String(), func(t *testing.T) {
			dataType, nullable, ok := primitive.DataTypeOf(rtype)
			assert.Equal(t, tt.dataType, dataType)
			assert.Equal(t, tt.nullable, nullable)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestFromTypeName(t *testing.T) {
	assert.Equal(t, primitive.KindTime, primitive.FromTypeName("time.Time"))
	assert.Equal(t, primitive.KindUUID, primitive.FromTypeName("github.com/google/uuid.UUID"))
	assert.Equal(t, primitive.KindBytes, primitive.FromTypeName("[]byte"))
	assert.Equal(t, "Int16", primitive.FromTypeName("int8").DataType())
	assert.Equal(t, primitive.KindEnum(0), primitive.FromTypeName("map[string]int"))
	assert.Equal(t, "", primitive.KindPrimitiveEnum.DataType())
}

package until

import (
	"math"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// exportAll lets deep comparison descend into unexported struct fields.
var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

// strictEqual reports whether a and b are the same value.
// Scalars compare as with ==, so NaN is never equal to itself. Slices are
// the same when they share a backing array and length; maps, funcs, chans
// and pointers are compared by identity. Structs, arrays and interfaces are
// walked field by field, so a dynamic slice or map inside an interface
// field is compared by identity instead of panicking.
func strictEqual(a, b any) bool {
	return identical(reflect.ValueOf(a), reflect.ValueOf(b))
}

func identical(va, vb reflect.Value) bool {
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Bool:
		return va.Bool() == vb.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return va.Int() == vb.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return va.Uint() == vb.Uint()
	case reflect.Float32, reflect.Float64:
		return va.Float() == vb.Float()
	case reflect.Complex64, reflect.Complex128:
		return va.Complex() == vb.Complex()
	case reflect.String:
		return va.String() == vb.String()
	case reflect.Interface:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return identical(va.Elem(), vb.Elem())
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if va.Type().Field(i).Name == "_" {
				continue
			}
			if !identical(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < va.Len(); i++ {
			if !identical(va.Index(i), vb.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// sameValue is strictEqual except that NaN is the same as NaN.
// It decides whether an assignment is a change.
func sameValue(a, b any) bool {
	if isNaN(a) && isNaN(b) {
		return true
	}
	return strictEqual(a, b)
}

// deepEqual reports whether a and b are structurally equal.
func deepEqual(a, b any) bool {
	return cmp.Equal(a, b, exportAll)
}

// equal dispatches to deepEqual or strictEqual.
func equal(a, b any, deep bool) bool {
	if deep {
		return deepEqual(a, b)
	}
	return strictEqual(a, b)
}

// isNil reports whether v is a nil pointer, map, slice, chan, func or
// interface.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// isNaN reports whether v is a floating-point NaN.
func isNaN(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(rv.Float())
	}
	return false
}

// isZero reports whether v is the zero value of its type.
func isZero(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}

// isTruthy applies Go's closest analogue of truthiness: nil, NaN and zero
// values are falsy. Nil-able kinds are truthy whenever they are non-nil, so
// an empty but allocated slice is truthy.
func isTruthy(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return !rv.IsNil()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return !rv.IsZero()
}

// Package assert panics on violated preconditions, these are programmer errors and are not
// meant to be handled.
package assert

import (
	"fmt"
	"reflect"
)

// NotNil panics if value is nil, including a nil pointer, map, slice, func or chan stored
// in an interface.
func NotNil(value any) {
	if isNil(value) {
		panic(fmt.Sprintf("assert: expected %T to be not nil", value))
	}
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

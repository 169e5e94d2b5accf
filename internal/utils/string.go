package utils

import (
	"reflect"
	"strings"
)

// TrimAllStringFields returns a copy of input with every string trimmed,
// descending into pointers, structs, slices and maps.
func TrimAllStringFields[T any](input T) T {
	value := reflect.ValueOf(&input).Elem()
	trimmed := trimValue(value)
	return trimmed.Interface().(T)
}

func trimValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(trimValue(v.Elem()))
		return out

	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(trimValue(v.Elem()))
		return newPtr

	case reflect.Struct:
		newStruct := reflect.New(v.Type()).Elem()
		newStruct.Set(v)
		for i := 0; i < v.NumField(); i++ {
			// unexported fields keep their value
			if !v.Type().Field(i).IsExported() {
				continue
			}
			newStruct.Field(i).Set(trimValue(v.Field(i)))
		}
		return newStruct

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(trimValue(v.Index(i)))
		}
		return newSlice

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		newMap := reflect.MakeMap(v.Type())
		iter := v.MapRange()
		for iter.Next() {
			newMap.SetMapIndex(trimValue(iter.Key()), trimValue(iter.Value()))
		}
		return newMap

	case reflect.String:
		// Convert keeps named string types such as status enums
		return reflect.ValueOf(strings.TrimSpace(v.String())).Convert(v.Type())
	}
	return v
}

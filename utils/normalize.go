package utils

import (
	"reflect"
	"strings"
)

// Normalize trims every string and rounds every float64 to cents in the
// struct dto points to. Set pointer fields and nested structs are followed;
// nil pointers stay nil so partial updates keep meaning "unchanged".
func Normalize(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	normalizeValue(v.Elem())
}

func normalizeValue(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			normalizeValue(v.Elem())
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if f := v.Field(i); f.CanSet() {
				normalizeValue(f)
			}
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	case reflect.Float64:
		if v.CanSet() {
			v.SetFloat(Round2(v.Float()))
		}
	}
}

package utils

import (
	"reflect"
	"strings"
)

// PatchMap returns the set pointer fields of the struct dto points to, keyed
// by json name, for use with gorm Updates. columns renames json names whose
// column differs.
func PatchMap(dto any, columns map[string]string) map[string]any {
	patch := map[string]any{}
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return patch
	}
	s := v.Elem()
	for i, t := 0, s.Type(); i < t.NumField(); i++ {
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if col, ok := columns[name]; ok && col != "" {
			name = col
		}
		patch[name] = fv.Elem().Interface()
	}
	return patch
}

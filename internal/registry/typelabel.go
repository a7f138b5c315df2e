package registry

import "reflect"

// typeLabel converts a reflected type into a stable display string.
// Named types use their short name, unnamed types their Go syntax; the empty
// interface reads as "any". It never fails.
func typeLabel(t reflect.Type) string {
	if t == nil {
		return "none"
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return "any"
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

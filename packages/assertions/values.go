package assertions

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// deepEqual compares a and b structurally. Numbers of any Go type are equal
// when their values are; strings, booleans and nil compare exactly.
func deepEqual(a, b any) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	if af, ok := toFloat64(a); ok {
		bf, ok := toFloat64(b)
		return ok && af == bf
	}
	if _, ok := toFloat64(b); ok {
		return false
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)

	switch av.Kind() {
	case reflect.Slice, reflect.Array:
		if bv.Kind() != reflect.Slice && bv.Kind() != reflect.Array {
			return false
		}
		if av.Kind() == reflect.Slice && av.Type().Elem().Kind() == reflect.Uint8 {
			return reflect.DeepEqual(a, b)
		}
		if av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if !deepEqual(av.Index(i).Interface(), bv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		if bv.Kind() != reflect.Map || av.Len() != bv.Len() {
			return false
		}
		if av.Type().Key() != bv.Type().Key() {
			return false
		}
		iter := av.MapRange()
		for iter.Next() {
			other := bv.MapIndex(iter.Key())
			if !other.IsValid() || !deepEqual(iter.Value().Interface(), other.Interface()) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	case json.Number:
		if f, err := strconv.ParseFloat(string(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// formatValue renders a value for failure messages: strings quoted, numbers
// and booleans in angle brackets, composites as JSON.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case []byte:
		return strconv.Quote(string(x))
	case bool:
		return "<" + strconv.FormatBool(x) + ">"
	}
	if _, ok := toFloat64(v); ok {
		return fmt.Sprintf("<%v>", v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return "null"
		}
	}
	return fmt.Sprintf("<%v>", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return sortStrings(keys)
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}

package jsonpath

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// GetObject maps the subtree at prefix (empty prefix means the whole document)
// onto target, which must be a non-nil pointer.
//
// Struct fields are matched by their json tag name. A field is required unless
// it is a pointer, slice, map or interface, or its tag carries omitempty.
// Unknown JSON members are ignored. On any mismatch target is left untouched.
func GetObject(body []byte, prefix string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(prefix, "", ErrShapeMismatch, "target must be a non-nil pointer, got %T", target)
	}

	path, err := Parse(prefix)
	if err != nil {
		return err
	}
	value, err := path.Evaluate(body)
	if err != nil {
		return err
	}

	elem := rv.Elem().Type()
	if err := checkShape(value, elem, ""); err != nil {
		return newError(prefix, err.field, ErrShapeMismatch, "%s", err.msg)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return newError(prefix, "", ErrShapeMismatch, "%v", err)
	}

	fresh := reflect.New(elem)
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(fresh.Interface()); err != nil {
		return newError(prefix, fieldOf(err), ErrShapeMismatch, "%v", err)
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

type shapeError struct {
	field string
	msg   string
}

// checkShape verifies required members exist, recursing into nested structs
// and slices of structs.
func checkShape(value any, t reflect.Type, at string) *shapeError {
	for t.Kind() == reflect.Pointer {
		if value == nil {
			return nil
		}
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := value.(map[string]any)
		if !ok {
			return &shapeError{field: at, msg: "expected object, got " + describe(value)}
		}
		return checkStruct(obj, t, at)

	case reflect.Slice, reflect.Array:
		items, ok := value.([]any)
		if !ok {
			if value == nil {
				return nil
			}
			return &shapeError{field: at, msg: "expected array, got " + describe(value)}
		}
		for i, item := range items {
			if err := checkShape(item, t.Elem(), at+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkStruct(obj map[string]any, t reflect.Type, at string) *shapeError {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitempty, skip := jsonName(f)
		if skip {
			continue
		}
		if f.Anonymous && f.Tag.Get("json") == "" && f.Type.Kind() == reflect.Struct {
			if err := checkStruct(obj, f.Type, at); err != nil {
				return err
			}
			continue
		}

		fieldPath := joinField(at, name)
		v, present := obj[name]
		if !present || v == nil {
			if omitempty || optionalKind(f.Type.Kind()) {
				continue
			}
			return &shapeError{field: fieldPath, msg: "missing required field " + `"` + fieldPath + `"`}
		}
		if err := checkShape(v, f.Type, fieldPath); err != nil {
			return err
		}
	}
	return nil
}

func jsonName(f reflect.StructField) (name string, omitempty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" || o == "omitzero" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func optionalKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

func joinField(at, name string) string {
	if at == "" {
		return name
	}
	return at + "." + name
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int64, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return reflect.TypeOf(v).String()
}

func fieldOf(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field
	}
	return ""
}

package cloak

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

// leafOp transforms one selected value as an opaque unit. The traversal
// applies it at exactly the selected locations and nowhere else.
type leafOp func(v any) (any, error)

// valueKind classifies a traversed value against the supported union.
type valueKind int

const (
	kindScalar valueKind = iota // null, bool, number, string
	kindArray
	kindObject
	kindUnsupported
)

// kindOf maps a Go value onto the supported union. Maps must be
// string-keyed to count as objects; structs, funcs, channels, and other
// non-plain values (time.Time, regexp, ...) are unsupported.
func kindOf(v any) valueKind {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return kindScalar
	case map[string]any:
		return kindObject
	case []any:
		return kindArray
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return kindArray
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return kindObject
		}
		return kindUnsupported
	case reflect.Pointer:
		if rv.IsNil() {
			return kindScalar
		}
		return kindUnsupported
	default:
		return kindUnsupported
	}
}

// asObject normalizes any string-keyed map to map[string]any for recursion.
func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}

	rv := reflect.ValueOf(v)
	obj := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		obj[iter.Key().String()] = iter.Value().Interface()
	}
	return obj
}

// transformObject walks value and applies op at every location named by
// paths, returning a structurally isomorphic copy. The input is never
// mutated. Any unsupported value reachable through the traversal aborts the
// whole call; no partial result is returned.
func transformObject(value map[string]any, paths PathSet, op leafOp) (map[string]any, error) {
	if len(paths) == 0 {
		paths = defaultPaths(value)
	}
	return walkObject(value, paths, op, "")
}

// walkObject handles one object level. Selection membership is tested
// against paths relative to this level; prefix carries the absolute dot
// path for error reporting only.
func walkObject(value map[string]any, paths PathSet, op leafOp, prefix string) (map[string]any, error) {
	out := make(map[string]any, len(value))

	for key, v := range value {
		full := joinPath(prefix, key)

		switch kindOf(v) {
		case kindArray:
			// Arrays are atomic leaves: transformed whole when selected,
			// never recursed into.
			if !paths.Selected(key) {
				out[key] = v
				continue
			}
			if err := validateValue(full, v); err != nil {
				return nil, err
			}
			replaced, err := op(v)
			if err != nil {
				return nil, wrapLeafErr(err, full)
			}
			out[key] = replaced

		case kindObject:
			obj := asObject(v)
			// A selected subtree is transformed as one opaque unit;
			// recursion happens only when the path is not selected.
			if paths.Selected(key) {
				if err := validateValue(full, v); err != nil {
					return nil, err
				}
				replaced, err := op(v)
				if err != nil {
					return nil, wrapLeafErr(err, full)
				}
				out[key] = replaced
				continue
			}
			child, err := walkObject(obj, paths.Narrow(key), op, full)
			if err != nil {
				return nil, err
			}
			out[key] = child

		case kindScalar:
			if !paths.Selected(key) {
				out[key] = v
				continue
			}
			replaced, err := op(v)
			if err != nil {
				return nil, wrapLeafErr(err, full)
			}
			out[key] = replaced

		default:
			return nil, newTransformError(ErrUnsupportedType, full, fmt.Errorf("%T", v))
		}
	}

	return out, nil
}

// validateValue rejects unsupported values anywhere inside a selected
// subtree before it is serialized as a unit.
func validateValue(path string, v any) error {
	switch kindOf(v) {
	case kindScalar:
		return nil
	case kindArray:
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			if err := validateValue(joinPath(path, strconv.Itoa(i)), rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case kindObject:
		for key, child := range asObject(v) {
			if err := validateValue(joinPath(path, key), child); err != nil {
				return err
			}
		}
		return nil
	default:
		return newTransformError(ErrUnsupportedType, path, fmt.Errorf("%T", v))
	}
}

// wrapLeafErr attaches the failing path to a leaf operation error, unless
// the op already did.
func wrapLeafErr(err error, path string) error {
	var te *TransformError
	if errors.As(err, &te) {
		return err
	}
	return &TransformError{Err: err, Path: path}
}

// serializeValue renders a selected value to canonical JSON before a leaf
// operation consumes it as an opaque unit. Map keys serialize in sorted
// order, so equal objects always serialize identically.
func serializeValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// joinPath joins dot-notation path segments.
func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

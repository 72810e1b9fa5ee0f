package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var errNotWrapped = errors.New("not a schema-wrapped value")

// ParseStringAs parses content into T.
//
// Strings are returned as they are, unless content is a {"type":..., "value":...}
// wrapper, in which case the wrapped value is returned. Booleans and numbers
// are converted with strconv, again looking through such a wrapper when the
// plain conversion fails. Everything else (structs, maps, slices) goes
// through JSON in three stages: plain unmarshaling, jsonrepair (single quotes,
// Python constants, comments, code fences, truncation), and finally removal of
// schema-style wrappers anywhere in the tree.
//
// Example usage:
//
//	fields, err := ParseStringAs[map[string]any](`{'Task list': ['a.py', 'b.py'], 'Done': True}`)
//	n, err := ParseStringAs[int]("42")
func ParseStringAs[T any](content string) (T, error) {
	var result T
	target := reflect.ValueOf(&result).Elem()

	switch target.Kind() {
	case reflect.String:
		if strings.HasPrefix(content, "{") {
			if unwrapped, err := unwrapPrimitive(content); err == nil {
				target.SetString(unwrapped)
				return result, nil
			}
		}
		target.SetString(content)
		return result, nil

	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		err := setPrimitive(target, content)
		if err == nil {
			return result, nil
		}
		if unwrapped, unwrapErr := unwrapPrimitive(content); unwrapErr == nil {
			if retryErr := setPrimitive(target, unwrapped); retryErr == nil {
				return result, nil
			}
		}
		return result, fmt.Errorf("failed to parse content as %s: %w", target.Kind(), err)

	default:
		if err := json.Unmarshal([]byte(content), &result); err == nil {
			return result, nil
		}

		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return result, fmt.Errorf("failed to repair JSON for %T: %w", result, repairErr)
		}
		var fixed T
		err := json.Unmarshal([]byte(repaired), &fixed)
		if err == nil {
			return fixed, nil
		}

		// LLMs sometimes echo the schema: {"name": {"type": "string", "value": "x"}}
		if unwrapped, unwrapErr := unwrapSchemaValues(repaired); unwrapErr == nil {
			var retry T
			if json.Unmarshal([]byte(unwrapped), &retry) == nil {
				return retry, nil
			}
		}
		return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w (repaired: %s)", result, err, truncate(repaired))
	}
}

// DecodeValue converts an already decoded value (maps, slices and scalars as
// produced by encoding/json or a literal parser) into T by round-tripping it
// through JSON.
func DecodeValue[T any](value any) (T, error) {
	var result T
	encoded, err := json.Marshal(value)
	if err != nil {
		return result, fmt.Errorf("failed to encode value for %T: %w", result, err)
	}
	return ParseStringAs[T](string(encoded))
}

func setPrimitive(target reflect.Value, content string) error {
	content = strings.TrimSpace(content)
	switch target.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(content)
		if err != nil {
			return err
		}
		target.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(content, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(content, 10, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(content, target.Type().Bits())
		if err != nil {
			return err
		}
		target.SetFloat(v)
	}
	return nil
}

// unwrapPrimitive returns the text form of the value inside a two-key
// {"type": ..., "value": ...} object.
func unwrapPrimitive(content string) (string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return "", err
	}
	value, ok := schemaWrapped(data)
	if !ok {
		return "", errNotWrapped
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case float64, bool:
		return fmt.Sprintf("%v", v), nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

func schemaWrapped(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}

// unwrapSchemaValues replaces every {"type": ..., "value": ...} object in a
// JSON document by its value.
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}
	encoded, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if value, ok := schemaWrapped(v); ok {
			return recursiveUnwrap(value)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = recursiveUnwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = recursiveUnwrap(val)
		}
		return out
	default:
		return data
	}
}

func truncate(s string) string {
	const limit = 300
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Code is the machine-readable validation error code.
//
// Codes are standardized across the daemon and its logs:
//   - "not_an_object": the message root is not a keyed mapping
//   - "unknown_field": a key outside the declared field set is present
//   - "missing_field": a declared, non-defaultable field is absent
//   - "type_mismatch": a value does not match its declared type
//   - "array_length": an array does not have its declared exact length
//   - "out_of_range": a numeric value violates a declared bound
type Code string

// Validation error codes.
const (
	CodeNotAnObject  Code = "not_an_object"
	CodeUnknownField Code = "unknown_field"
	CodeMissingField Code = "missing_field"
	CodeTypeMismatch Code = "type_mismatch"
	CodeArrayLength  Code = "array_length"
	CodeOutOfRange   Code = "out_of_range"
)

// ValidationError describes the first violation encountered while walking
// a raw message against a schema. Validation is fail-fast: one message,
// one error, in declared field order.
type ValidationError struct {
	Schema   ID     // the schema the message was validated against
	Field    string // dotted path to the offending field, e.g. "LCS.positionActual"
	Code     Code
	Expected string // expected type/length/bound description
	Actual   string // shape or value actually found
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeNotAnObject:
		return fmt.Sprintf("%s: message is not an object (got %s)", e.Schema, e.Actual)
	case CodeUnknownField:
		return fmt.Sprintf("%s: unknown field %q", e.Schema, e.Field)
	case CodeMissingField:
		return fmt.Sprintf("%s: missing field %q", e.Schema, e.Field)
	case CodeOutOfRange:
		return fmt.Sprintf("%s: field %q: value %s out of range (expected %s)",
			e.Schema, e.Field, e.Actual, e.Expected)
	default:
		return fmt.Sprintf("%s: field %q: expected %s, got %s",
			e.Schema, e.Field, e.Expected, e.Actual)
	}
}

// Validate walks raw against the schema identified by id and returns the
// normalized field map on success: numbers as float64, strings as string,
// arrays as []float64 or []string of the declared exact length, nested
// objects as nested maps. On the first violation it returns a
// ValidationError carrying the dotted field path.
//
// Validate is pure and stateless per call; a Registry may be shared by
// any number of concurrent callers.
func Validate(reg *Registry, id ID, raw any) (map[string]any, *ValidationError) {
	return validate(reg, id, reg.Lookup(id), raw, "")
}

// Accepts checks a single value against the descriptor and returns the
// normalized value, or the reason it was rejected. Object descriptors are
// resolved through reg.
func (d TypeDescriptor) Accepts(reg *Registry, top ID, v any) (any, *ValidationError) {
	return acceptValue(reg, top, d, "", v)
}

func validate(reg *Registry, top ID, def Def, raw any, prefix string) (map[string]any, *ValidationError) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{
			Schema: top,
			Field:  prefix,
			Code:   CodeNotAnObject,
			Actual: describeValue(raw),
		}
	}

	// Closed schema: any key outside the declared set is a hard failure.
	// Keys are checked in sorted order so the reported field is
	// deterministic when several unknown keys are present.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, declared := def.Field(k); !declared {
			return nil, &ValidationError{
				Schema: top,
				Field:  joinPath(prefix, k),
				Code:   CodeUnknownField,
			}
		}
	}

	out := make(map[string]any, len(def.Fields))
	for _, f := range def.Fields {
		path := joinPath(prefix, f.Name)

		v, present := m[f.Name]
		if !present {
			if f.Default == nil {
				return nil, &ValidationError{
					Schema: top,
					Field:  path,
					Code:   CodeMissingField,
				}
			}
			// Defaults pass through the same type and bounds checks as
			// literal values.
			v = f.Default
		}

		normalized, verr := acceptValue(reg, top, f.Type, path, v)
		if verr != nil {
			return nil, verr
		}

		if verr := checkBounds(top, f, path, normalized); verr != nil {
			return nil, verr
		}

		out[f.Name] = normalized
	}

	return out, nil
}

// acceptValue checks a raw value against a descriptor and normalizes it.
func acceptValue(reg *Registry, top ID, d TypeDescriptor, path string, v any) (any, *ValidationError) {
	switch d.Kind {
	case KindNumber:
		n, ok := toFloat64(v)
		if !ok {
			return nil, mismatch(top, path, d.Describe(), describeValue(v))
		}
		return n, nil

	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(top, path, d.Describe(), describeValue(v))
		}
		return s, nil

	case KindArray:
		seq, ok := v.([]any)
		if !ok {
			return nil, mismatch(top, path, d.Describe(), describeValue(v))
		}
		if len(seq) != d.Length {
			return nil, &ValidationError{
				Schema:   top,
				Field:    path,
				Code:     CodeArrayLength,
				Expected: d.Describe(),
				Actual:   fmt.Sprintf("array of %d", len(seq)),
			}
		}
		return acceptElements(reg, top, d, path, seq)

	case KindObject:
		nested, verr := validate(reg, top, reg.Lookup(d.Ref), v, path)
		if verr != nil {
			return nil, verr
		}
		return nested, nil

	default:
		panic(fmt.Sprintf("schema: descriptor with unknown kind %d", d.Kind))
	}
}

// acceptElements validates every element and normalizes the sequence to a
// typed slice. The element descriptor is always scalar in the known
// schemas; the first failing index is reported.
func acceptElements(reg *Registry, top ID, d TypeDescriptor, path string, seq []any) (any, *ValidationError) {
	switch d.Elem.Kind {
	case KindNumber:
		out := make([]float64, len(seq))
		for i, el := range seq {
			n, ok := toFloat64(el)
			if !ok {
				return nil, mismatch(top, elemPath(path, i), d.Elem.Describe(), describeValue(el))
			}
			out[i] = n
		}
		return out, nil

	case KindString:
		out := make([]string, len(seq))
		for i, el := range seq {
			s, ok := el.(string)
			if !ok {
				return nil, mismatch(top, elemPath(path, i), d.Elem.Describe(), describeValue(el))
			}
			out[i] = s
		}
		return out, nil

	default:
		out := make([]any, len(seq))
		for i, el := range seq {
			n, verr := acceptValue(reg, top, *d.Elem, elemPath(path, i), el)
			if verr != nil {
				return nil, verr
			}
			out[i] = n
		}
		return out, nil
	}
}

func checkBounds(top ID, f FieldSpec, path string, normalized any) *ValidationError {
	n, isNumber := normalized.(float64)
	if !isNumber {
		return nil
	}

	if f.Integer && n != math.Trunc(n) {
		return mismatch(top, path, "integer", formatNumber(n))
	}
	hasBounds := f.ExclusiveMinimum != nil || f.Minimum != nil || f.Maximum != nil
	if hasBounds && (math.IsNaN(n) || math.IsInf(n, 0)) {
		return outOfRange(top, path, "a finite number", n)
	}
	if f.ExclusiveMinimum != nil && n <= *f.ExclusiveMinimum {
		return outOfRange(top, path, fmt.Sprintf("> %s", formatNumber(*f.ExclusiveMinimum)), n)
	}
	if f.Minimum != nil && n < *f.Minimum {
		return outOfRange(top, path, fmt.Sprintf(">= %s", formatNumber(*f.Minimum)), n)
	}
	if f.Maximum != nil && n > *f.Maximum {
		return outOfRange(top, path, fmt.Sprintf("<= %s", formatNumber(*f.Maximum)), n)
	}
	return nil
}

func mismatch(top ID, path, expected, actual string) *ValidationError {
	return &ValidationError{
		Schema:   top,
		Field:    path,
		Code:     CodeTypeMismatch,
		Expected: expected,
		Actual:   actual,
	}
}

func outOfRange(top ID, path, bound string, value float64) *ValidationError {
	return &ValidationError{
		Schema:   top,
		Field:    path,
		Code:     CodeOutOfRange,
		Expected: bound,
		Actual:   formatNumber(value),
	}
}

// toFloat64 normalizes the numeric representations produced by the JSON
// and YAML deserializers. Booleans are not numbers.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// describeValue reports the shape of a raw value for diagnostics.
func describeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case float64, float32, int, int32, int64, uint64:
		return "number"
	case []any:
		return fmt.Sprintf("array of %d", len(val))
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func elemPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

package values

import (
	"math"
	"strconv"
	"strings"
)

// Lookup returns the value at a dot-separated path such as "ingress.host".
// ok is false when a segment is absent, the value is null, or an
// intermediate segment is not a mapping.
func (v Values) Lookup(path string) (any, bool) {
	value, ok, err := v.lookup(path)
	if err != nil {
		return nil, false
	}
	return value, ok
}

// Has reports whether path resolves to a non-null value.
func (v Values) Has(path string) bool {
	_, ok := v.Lookup(path)
	return ok
}

func (v Values) lookup(path string) (any, bool, error) {
	var current any = map[string]any(v)
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		m, isMap := asMap(current)
		if !isMap {
			if current == nil {
				return nil, false, nil
			}
			return nil, false, Mismatch(strings.Join(segments[:i], "."), "mapping", current)
		}
		next, exists := m[segment]
		if !exists {
			return nil, false, nil
		}
		current = next
	}
	return current, current != nil, nil
}

// String returns the scalar at path formatted as a string. Absent and null
// values yield "". Mappings and sequences are a type mismatch.
func (v Values) String(path string) (string, error) {
	value, ok, err := v.lookup(path)
	if err != nil || !ok {
		return "", err
	}
	s, isScalar := scalarString(value)
	if !isScalar {
		return "", Mismatch(path, "string", value)
	}
	return s, nil
}

// RequireString is like String but reports ErrMissingRequiredField when the
// value is absent, null or empty.
func (v Values) RequireString(path string) (string, error) {
	s, err := v.String(path)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", Missing(path)
	}
	return s, nil
}

// Int returns the integer at path. ok is false when the value is absent or
// null. Integral floats and numeric strings are accepted.
func (v Values) Int(path string) (n int, ok bool, err error) {
	value, ok, err := v.lookup(path)
	if err != nil || !ok {
		return 0, false, err
	}
	n, isInt := toInt(value)
	if !isInt {
		return 0, false, Mismatch(path, "integer", value)
	}
	return n, true, nil
}

// Bool returns the boolean at path. ok is false when the value is absent or
// null. The strings "true" and "false" are accepted.
func (v Values) Bool(path string) (b bool, ok bool, err error) {
	value, ok, err := v.lookup(path)
	if err != nil || !ok {
		return false, false, err
	}
	switch t := value.(type) {
	case bool:
		return t, true, nil
	case string:
		parsed, perr := strconv.ParseBool(t)
		if perr == nil {
			return parsed, true, nil
		}
	}
	return false, false, Mismatch(path, "boolean", value)
}

// BoolOr returns the boolean at path or fallback when it is absent.
func (v Values) BoolOr(path string, fallback bool) (bool, error) {
	b, ok, err := v.Bool(path)
	if err != nil {
		return false, err
	}
	if !ok {
		return fallback, nil
	}
	return b, nil
}

// Map returns the mapping at path. Absent and null values yield nil. The
// returned document is not copied.
func (v Values) Map(path string) (Values, error) {
	value, ok, err := v.lookup(path)
	if err != nil || !ok {
		return nil, err
	}
	m, isMap := asMap(value)
	if !isMap {
		return nil, Mismatch(path, "mapping", value)
	}
	return Values(m), nil
}

// StringMap returns the mapping at path with every value formatted as a
// string. Nested mappings or sequences are a type mismatch.
func (v Values) StringMap(path string) (map[string]string, error) {
	m, err := v.Map(path)
	if err != nil || m == nil {
		return nil, err
	}
	result := make(map[string]string, len(m))
	for key, value := range m {
		if value == nil {
			continue
		}
		s, isScalar := scalarString(value)
		if !isScalar {
			return nil, Mismatch(path+"."+key, "string", value)
		}
		result[key] = s
	}
	return result, nil
}

// StringSlice returns the sequence at path as strings.
func (v Values) StringSlice(path string) ([]string, error) {
	value, ok, err := v.lookup(path)
	if err != nil || !ok {
		return nil, err
	}
	switch t := value.(type) {
	case []string:
		result := make([]string, len(t))
		copy(result, t)
		return result, nil
	case []any:
		result := make([]string, 0, len(t))
		for i, item := range t {
			s, isScalar := scalarString(item)
			if !isScalar {
				return nil, Mismatch(path+"["+strconv.Itoa(i)+"]", "string", item)
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, Mismatch(path, "sequence", value)
	}
}

// scalarString formats a scalar as a string.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int8, int16, int32, int64:
		n, _ := toInt(v)
		return strconv.Itoa(n), true
	case uint, uint8, uint16, uint32, uint64:
		n, _ := toInt(v)
		return strconv.Itoa(n), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

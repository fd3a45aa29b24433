package values

// Values is a configuration document: a mapping from string keys to
// scalars, nested mappings or sequences.
type Values map[string]any

// Clone returns a deep copy of v. Nested mappings and sequences are copied;
// scalars are shared since they are immutable.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	return deepCopy(v).(Values)
}

// ToMap converts v and every nested Values to plain map[string]any.
func (v Values) ToMap() map[string]any {
	if v == nil {
		return nil
	}
	return toPlain(v).(map[string]any)
}

// asMap reports whether value is a mapping and returns it as a plain map.
func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case Values:
		return map[string]any(m), true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// deepCopy creates a deep copy of any value, preserving the concrete
// mapping and sequence types so copies compare equal to their source.
func deepCopy(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case Values:
		if v == nil {
			return v
		}
		result := make(Values, len(v))
		for k, val := range v {
			result[k] = deepCopy(val)
		}
		return result
	case map[string]any:
		if v == nil {
			return v
		}
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = deepCopy(val)
		}
		return result
	case []any:
		if v == nil {
			return v
		}
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = deepCopy(val)
		}
		return result
	case []map[string]any:
		if v == nil {
			return v
		}
		result := make([]map[string]any, len(v))
		for i, val := range v {
			result[i] = deepCopy(val).(map[string]any)
		}
		return result
	case []string:
		if v == nil {
			return v
		}
		result := make([]string, len(v))
		copy(result, v)
		return result
	default:
		// Primitive types are immutable, return as-is
		return value
	}
}

func toPlain(value any) any {
	switch v := value.(type) {
	case Values:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = toPlain(val)
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			result[k] = toPlain(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = toPlain(val)
		}
		return result
	default:
		return deepCopy(value)
	}
}

package values

// Merge deep-merges override on top of defaults and returns a new document.
//
// Merge semantics:
//   - both sides are mappings: merged key by key, recursively
//   - anything else (scalar, sequence, nil): the override value replaces
//     the default, sequences are never combined element-wise
//   - keys only present in defaults are kept unchanged
//
// Neither input is modified and the result shares no mutable structure with
// them. A nil or empty override yields a copy equal to defaults.
func Merge(defaults, override Values) Values {
	if len(override) == 0 {
		return defaults.Clone()
	}
	return Values(mergeMaps(defaults, override))
}

// MergeAll folds layers left to right, later layers taking precedence.
// The usual order is generator defaults, override document, call-site
// parameters.
func MergeAll(layers ...Values) Values {
	var result Values
	for _, layer := range layers {
		result = Merge(result, layer)
	}
	if result == nil {
		result = Values{}
	}
	return result
}

func mergeMaps(base, overlay map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		result[key] = deepCopy(value)
	}

	for key, overlayValue := range overlay {
		baseValue, exists := result[key]
		if exists {
			baseMap, baseIsMap := asMap(baseValue)
			overlayMap, overlayIsMap := asMap(overlayValue)
			if baseIsMap && overlayIsMap {
				result[key] = sameKind(baseValue, mergeMaps(baseMap, overlayMap))
				continue
			}
		}

		// Either key is new, or at least one side is not a mapping
		result[key] = deepCopy(overlayValue)
	}

	return result
}

// sameKind returns merged typed like the original default mapping.
func sameKind(original any, merged map[string]any) any {
	if _, ok := original.(Values); ok {
		return Values(merged)
	}
	return merged
}

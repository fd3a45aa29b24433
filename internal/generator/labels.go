package generator

import "maps"

// Standard Kubernetes label keys.
//
// See: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
const (
	LabelAppName      = "app.kubernetes.io/name"
	LabelAppInstance  = "app.kubernetes.io/instance"
	LabelAppManagedBy = "app.kubernetes.io/managed-by"

	// ManagedBy identifies this library as the producer of the resources.
	ManagedBy = "chartlib"
)

// SelectorLabels returns the labels the endpoint uses to select the
// workload's pods. They are derived from the resource name only, so they
// never change across upgrades.
func SelectorLabels(name string) map[string]string {
	return map[string]string{
		LabelAppName:     name,
		LabelAppInstance: name,
	}
}

// standardLabels returns the selector labels plus managed-by, layered over
// user labels. User labels cannot override the standard keys.
func standardLabels(name string, user map[string]string) map[string]string {
	labels := mergeStringMaps(user, SelectorLabels(name))
	labels[LabelAppManagedBy] = ManagedBy
	return labels
}

// mergeStringMaps merges maps into a new map, later maps winning. It returns
// nil when every input is empty.
func mergeStringMaps(ms ...map[string]string) map[string]string {
	var result map[string]string
	for _, m := range ms {
		if len(m) == 0 {
			continue
		}
		if result == nil {
			result = make(map[string]string)
		}
		maps.Copy(result, m)
	}
	return result
}

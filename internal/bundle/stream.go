package bundle

import (
	"fmt"
	"io"
	"slices"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

// Separator joins documents in an encoded stream.
const Separator = "---\n"

// Stream is an ordered list of resources. Order is significant.
type Stream []Resource

// Kinds lists the kind of every resource in order.
func (s Stream) Kinds() []string {
	kinds := make([]string, len(s))
	for i, r := range s {
		kinds[i] = r.Kind()
	}
	return kinds
}

// Find returns the first resource produced by the named generator.
func (s Stream) Find(generator string) (Resource, bool) {
	for _, r := range s {
		if r.Generator == generator {
			return r, true
		}
	}
	return Resource{}, false
}

// ByPriority returns a copy sorted by priority. Resources without a
// priority sort as zero. The sort is stable, so equal priorities keep
// their composition order.
func (s Stream) ByPriority() Stream {
	sorted := slices.Clone(s)
	slices.SortStableFunc(sorted, func(a, b Resource) int {
		return priorityOf(a) - priorityOf(b)
	})
	return sorted
}

func priorityOf(r Resource) int {
	if r.Priority == nil {
		return 0
	}
	return *r.Priority
}

// Encode writes the stream as "---" separated YAML documents.
func (s Stream) Encode(w io.Writer) error {
	for i, r := range s {
		data, err := Marshal(r.Object)
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.Generator, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, Separator); err != nil {
				return err
			}
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes a single object as YAML, dropping the fields the API
// server owns (status and creation timestamps).
func Marshal(obj runtime.Object) ([]byte, error) {
	content, err := toUnstructured(obj)
	if err != nil {
		return nil, err
	}

	unstructured.RemoveNestedField(content, "status")
	unstructured.RemoveNestedField(content, "metadata", "creationTimestamp")
	unstructured.RemoveNestedField(content, "spec", "template", "metadata", "creationTimestamp")

	return yaml.Marshal(content)
}

func toUnstructured(obj runtime.Object) (map[string]any, error) {
	if u, ok := obj.(*unstructured.Unstructured); ok {
		return u.DeepCopy().UnstructuredContent(), nil
	}
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("convert %T: %w", obj, err)
	}
	return content, nil
}

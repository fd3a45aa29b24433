package values

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/strvals"
)

// FromYAML parses a YAML document into Values. An empty document yields an
// empty, non-nil Values.
func FromYAML(data []byte) (Values, error) {
	var v Values
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	if v == nil {
		v = Values{}
	}
	return v, nil
}

// ToYAML encodes v as YAML with two-space indentation.
func (v Values) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v.ToMap()); err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encode values: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseSet parses call-site parameters in the helm --set syntax
// ("a.b=1,c[0]=x") into a single document, later expressions winning.
func ParseSet(expressions []string) (Values, error) {
	result := make(map[string]any)
	for _, expr := range expressions {
		if err := strvals.ParseInto(expr, result); err != nil {
			return nil, fmt.Errorf("parse --set %q: %w", expr, err)
		}
	}
	return Values(result), nil
}

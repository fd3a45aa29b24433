package values

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// RenderTemplates renders every string leaf containing "{{" as a Go
// template and returns a new document. Templates see the whole document as
// .Values and have the hermetic sprig functions available (no env or
// network access), so rendering stays deterministic:
//
//	host: "{{ .Values.name }}.example.com"
//
// Rendering is a single pass: a template that references another templated
// value sees its raw text. Referencing a missing key is an error.
func RenderTemplates(v Values) (Values, error) {
	if v == nil {
		return nil, nil
	}
	data := map[string]any{"Values": v.ToMap()}
	rendered, err := renderNode(v, "", data)
	if err != nil {
		return nil, err
	}
	return rendered.(Values), nil
}

func renderNode(node any, path string, data map[string]any) (any, error) {
	switch n := node.(type) {
	case Values:
		out, err := renderMap(n, path, data)
		if err != nil {
			return nil, err
		}
		return Values(out), nil
	case map[string]any:
		return renderMap(n, path, data)
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			r, err := renderNode(item, indexPath(path, i), data)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case []string:
		out := make([]string, len(n))
		for i, item := range n {
			r, err := renderString(item, indexPath(path, i), data)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case string:
		return renderString(n, path, data)
	default:
		return deepCopy(node), nil
	}
}

func renderMap(m map[string]any, path string, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for key, value := range m {
		childPath := key
		if path != "" {
			childPath = path + "." + key
		}
		r, err := renderNode(value, childPath, data)
		if err != nil {
			return nil, err
		}
		out[key] = r
	}
	return out, nil
}

func renderString(s, path string, data map[string]any) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	tmpl, err := template.New(path).
		Option("missingkey=error").
		Funcs(sprig.HermeticTxtFuncMap()).
		Parse(s)
	if err != nil {
		return "", NewFieldError(path, ErrTemplate, "parse: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewFieldError(path, ErrTemplate, "execute: %v", err)
	}

	return buf.String(), nil
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

package generator

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/starburst997/charts-library/internal/values"
)

// Namespace declares the namespace the other resources live in. It can be
// switched off with namespaceDeclaration.create when the namespace is
// managed elsewhere.
type Namespace struct{}

func (Namespace) Name() string { return NameNamespace }

func (Namespace) Defaults() values.Values {
	return values.Merge(commonDefaults(), values.Values{
		"namespaceDeclaration": map[string]any{
			"create": true,
		},
	})
}

func (g Namespace) Enabled(cfg values.Values) (bool, error) {
	cfg = values.Merge(g.Defaults(), cfg)
	enabled, err := cfg.BoolOr("namespaceDeclaration.create", true)
	return enabled, values.WithGenerator(err, NameNamespace)
}

func (g Namespace) Generate(cfg values.Values) (runtime.Object, error) {
	ns, err := g.generate(values.Merge(g.Defaults(), cfg))
	return finish(ns, err, NameNamespace)
}

func (Namespace) generate(cfg values.Values) (*corev1.Namespace, error) {
	m, err := resolveMeta(cfg)
	if err != nil {
		return nil, err
	}

	return &corev1.Namespace{
		TypeMeta: metav1.TypeMeta{
			APIVersion: corev1.SchemeGroupVersion.String(),
			Kind:       "Namespace",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name: m.Namespace,
			Labels: map[string]string{
				LabelAppManagedBy: ManagedBy,
			},
		},
	}, nil
}

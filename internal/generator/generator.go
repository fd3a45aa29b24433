package generator

import (
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/starburst997/charts-library/internal/values"
)

// Generator names, used in errors and logs.
const (
	NameNamespace          = "namespace"
	NameEndpoint           = "endpoint"
	NameWorkload           = "workload"
	NameIngress            = "ingress"
	NameApplicationSecrets = "application-secrets"
	NameRegistrySecrets    = "registry-secrets"
)

// Generator produces one resource description from configuration.
type Generator interface {
	// Name identifies the generator.
	Name() string

	// Defaults returns a fresh copy of the generator's embedded defaults.
	Defaults() values.Values

	// Enabled reports whether the generator contributes to a bundle.
	Enabled(cfg values.Values) (bool, error)

	// Generate merges cfg over Defaults and builds the resource.
	Generate(cfg values.Values) (runtime.Object, error)
}

// Prioritized is implemented by generators whose resources carry an
// ordering hint. Lower values are materialized first.
type Prioritized interface {
	Priority() int
}

// All returns every generator in bundle order.
func All() []Generator {
	return []Generator{
		Namespace{},
		Endpoint{},
		Workload{},
		Ingress{},
		ApplicationSecrets{},
		RegistrySecrets{},
	}
}

// Lookup returns the generator with the given name.
func Lookup(name string) (Generator, bool) {
	for _, g := range All() {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// Names lists generator names in bundle order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, g := range all {
		names[i] = g.Name()
	}
	return names
}

// commonDefaults holds the top-level keys shared by every generator.
func commonDefaults() values.Values {
	return values.Values{
		"name":        "",
		"namespace":   "",
		"labels":      map[string]any{},
		"annotations": map[string]any{},
	}
}

// meta is the identity shared by every generated object.
type meta struct {
	Name        string
	Namespace   string
	Labels      map[string]string
	Annotations map[string]string
}

func resolveMeta(cfg values.Values) (meta, error) {
	name, err := cfg.RequireString("name")
	if err != nil {
		return meta{}, err
	}
	if errs := validation.IsDNS1123Label(name); len(errs) > 0 {
		return meta{}, values.NewFieldError("name", values.ErrTypeMismatch, "%s", strings.Join(errs, "; "))
	}

	namespace, err := cfg.String("namespace")
	if err != nil {
		return meta{}, err
	}
	if namespace == "" {
		namespace = name
	}
	if errs := validation.IsDNS1123Label(namespace); len(errs) > 0 {
		return meta{}, values.NewFieldError("namespace", values.ErrTypeMismatch, "%s", strings.Join(errs, "; "))
	}

	labels, err := cfg.StringMap("labels")
	if err != nil {
		return meta{}, err
	}
	annotations, err := cfg.StringMap("annotations")
	if err != nil {
		return meta{}, err
	}

	return meta{
		Name:        name,
		Namespace:   namespace,
		Labels:      labels,
		Annotations: annotations,
	}, nil
}

// objectMeta builds ObjectMeta for an object named name in m's namespace.
// extra annotations are layered over the shared ones.
func (m meta) objectMeta(name string, extra map[string]string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:        name,
		Namespace:   m.Namespace,
		Labels:      standardLabels(m.Name, m.Labels),
		Annotations: mergeStringMaps(m.Annotations, extra),
	}
}

// ApplicationSecretName is the Secret materialized by the application bundle.
func ApplicationSecretName(name string) string {
	return name + "-secrets"
}

// RegistrySecretName is the Secret materialized by the registry bundle.
func RegistrySecretName(name string) string {
	return name + "-registry"
}

// TLSSecretName is the Secret cert-manager issues the ingress certificate into.
func TLSSecretName(name string) string {
	return name + "-tls"
}

// finish drops a partially built object on error and stamps the generator
// name on field errors.
func finish(obj runtime.Object, err error, generator string) (runtime.Object, error) {
	if err != nil {
		return nil, values.WithGenerator(err, generator)
	}
	return obj, nil
}

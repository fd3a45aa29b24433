package generator

import (
	"strconv"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/starburst997/charts-library/internal/secretref"
	"github.com/starburst997/charts-library/internal/values"
)

// ExternalSecretGVK is the external-secrets.io kind both secret bundles emit.
var ExternalSecretGVK = schema.GroupVersionKind{
	Group:   "external-secrets.io",
	Version: "v1",
	Kind:    "ExternalSecret",
}

// Ordering markers understood by Helm and Argo CD.
const (
	AnnotationHelmHook         = "helm.sh/hook"
	AnnotationHelmHookWeight   = "helm.sh/hook-weight"
	AnnotationHelmDeletePolicy = "helm.sh/hook-delete-policy"
	AnnotationArgoSyncWave     = "argocd.argoproj.io/sync-wave"
)

// Secret bundle priorities. Lower is materialized first.
const (
	RegistrySecretsPriority    = -10
	ApplicationSecretsPriority = -5
)

const (
	defaultStoreName       = "secret-store"
	defaultStoreKind       = "ClusterSecretStore"
	defaultRefreshInterval = "1h"
)

func storeDefaults() map[string]any {
	return map[string]any{
		"name": defaultStoreName,
		"kind": defaultStoreKind,
	}
}

// orderingAnnotations returns the hook and sync-wave markers for priority.
func orderingAnnotations(priority int) map[string]string {
	weight := strconv.Itoa(priority)
	return map[string]string{
		AnnotationHelmHook:         "pre-install,pre-upgrade",
		AnnotationHelmHookWeight:   weight,
		AnnotationHelmDeletePolicy: "before-hook-creation",
		AnnotationArgoSyncWave:     weight,
	}
}

// remoteData is one spec.data entry of an ExternalSecret.
type remoteData struct {
	SecretKey string
	Ref       secretref.Reference
}

func (d remoteData) object() map[string]any {
	remote := map[string]any{"key": d.Ref.StoreKey}
	if d.Ref.HasProperty {
		remote["property"] = d.Ref.Property
	}
	return map[string]any{
		"secretKey": d.SecretKey,
		"remoteRef": remote,
	}
}

// parseRef parses the reference at path. An empty store key is reported as
// missing.
func parseRef(path, raw string) (secretref.Reference, error) {
	ref, err := secretref.Parse(raw)
	if err != nil {
		return secretref.Reference{}, values.NewFieldError(path, err, "")
	}
	if ref.StoreKey == "" {
		return secretref.Reference{}, values.Missing(path)
	}
	return ref, nil
}

// externalSecretSpec holds what differs between the two secret bundles.
type externalSecretSpec struct {
	Name            string
	Priority        int
	StoreName       string
	StoreKind       string
	RefreshInterval string
	Target          map[string]any
	Data            []remoteData
}

// storeRef reads the store name and kind under prefix.
func storeRef(cfg values.Values, prefix string) (name, kind string, err error) {
	if name, err = cfg.RequireString(prefix + ".name"); err != nil {
		return "", "", err
	}
	if kind, err = cfg.String(prefix + ".kind"); err != nil {
		return "", "", err
	}
	switch kind {
	case "":
		kind = defaultStoreKind
	case "SecretStore", "ClusterSecretStore":
	default:
		return "", "", values.NewFieldError(prefix+".kind", values.ErrTypeMismatch, "unsupported store kind %q", kind)
	}
	return name, kind, nil
}

func newExternalSecret(m meta, s externalSecretSpec) *unstructured.Unstructured {
	data := make([]any, len(s.Data))
	for i, d := range s.Data {
		data[i] = d.object()
	}

	refresh := s.RefreshInterval
	if refresh == "" {
		refresh = defaultRefreshInterval
	}

	obj := &unstructured.Unstructured{Object: map[string]any{
		"spec": map[string]any{
			"refreshInterval": refresh,
			"secretStoreRef": map[string]any{
				"name": s.StoreName,
				"kind": s.StoreKind,
			},
			"target": s.Target,
			"data":   data,
		},
	}}
	obj.SetGroupVersionKind(ExternalSecretGVK)

	om := m.objectMeta(s.Name, orderingAnnotations(s.Priority))
	obj.SetName(om.Name)
	obj.SetNamespace(om.Namespace)
	obj.SetLabels(om.Labels)
	obj.SetAnnotations(om.Annotations)
	return obj
}

package generator

import (
	"maps"
	"slices"

	"k8s.io/apimachinery/pkg/runtime"

	"github.com/starburst997/charts-library/internal/values"
)

// ApplicationSecrets builds the ExternalSecret that materializes the
// application's secrets. Every key of secrets.items becomes both a key of
// the target Secret and an env var on the workload.
type ApplicationSecrets struct{}

func (ApplicationSecrets) Name() string { return NameApplicationSecrets }

func (ApplicationSecrets) Priority() int { return ApplicationSecretsPriority }

func (ApplicationSecrets) Defaults() values.Values {
	return values.Merge(commonDefaults(), values.Values{
		"secrets": map[string]any{
			"enabled":         true,
			"store":           storeDefaults(),
			"refreshInterval": defaultRefreshInterval,
			"items":           map[string]any{},
		},
	})
}

// Enabled reports whether secrets.enabled is set and there is at least one
// item.
func (g ApplicationSecrets) Enabled(cfg values.Values) (bool, error) {
	keys, err := g.Keys(cfg)
	return len(keys) > 0, err
}

// Keys returns the sorted secret keys the bundle provides, or nil when the
// bundle is disabled.
func (g ApplicationSecrets) Keys(cfg values.Values) ([]string, error) {
	keys, err := g.keys(cfg)
	return keys, values.WithGenerator(err, NameApplicationSecrets)
}

func (g ApplicationSecrets) keys(cfg values.Values) ([]string, error) {
	cfg = values.Merge(g.Defaults(), cfg)

	enabled, err := cfg.BoolOr("secrets.enabled", true)
	if err != nil || !enabled {
		return nil, err
	}
	items, err := cfg.StringMap("secrets.items")
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return slices.Sorted(maps.Keys(items)), nil
}

func (g ApplicationSecrets) Generate(cfg values.Values) (runtime.Object, error) {
	obj, err := g.generate(values.Merge(g.Defaults(), cfg))
	return finish(obj, err, NameApplicationSecrets)
}

func (g ApplicationSecrets) generate(cfg values.Values) (runtime.Object, error) {
	m, err := resolveMeta(cfg)
	if err != nil {
		return nil, err
	}

	items, err := cfg.StringMap("secrets.items")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, values.NewFieldError("secrets.items", values.ErrMissingRequiredField, "at least one secret is required")
	}

	data := make([]remoteData, 0, len(items))
	for _, key := range slices.Sorted(maps.Keys(items)) {
		ref, err := parseRef("secrets.items."+key, items[key])
		if err != nil {
			return nil, err
		}
		data = append(data, remoteData{SecretKey: key, Ref: ref})
	}

	storeName, storeKind, err := storeRef(cfg, "secrets.store")
	if err != nil {
		return nil, err
	}
	refresh, err := cfg.String("secrets.refreshInterval")
	if err != nil {
		return nil, err
	}

	return newExternalSecret(m, externalSecretSpec{
		Name:            ApplicationSecretName(m.Name),
		Priority:        g.Priority(),
		StoreName:       storeName,
		StoreKind:       storeKind,
		RefreshInterval: refresh,
		Target: map[string]any{
			"name":           ApplicationSecretName(m.Name),
			"creationPolicy": "Owner",
		},
		Data: data,
	}), nil
}

package generator

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/starburst997/charts-library/internal/values"
)

// DefaultRegistryServer is the registry credentials are issued for when
// registry.server is unset.
const DefaultRegistryServer = "ghcr.io"

// RegistrySecrets builds the ExternalSecret producing image pull
// credentials. The workload references the resulting Secret in
// imagePullSecrets.
type RegistrySecrets struct{}

func (RegistrySecrets) Name() string { return NameRegistrySecrets }

func (RegistrySecrets) Priority() int { return RegistrySecretsPriority }

func (RegistrySecrets) Defaults() values.Values {
	return values.Merge(commonDefaults(), values.Values{
		"registry": map[string]any{
			"enabled":         false,
			"server":          DefaultRegistryServer,
			"username":        "",
			"token":           "",
			"store":           storeDefaults(),
			"refreshInterval": defaultRefreshInterval,
		},
	})
}

func (g RegistrySecrets) Enabled(cfg values.Values) (bool, error) {
	enabled, err := g.enabled(cfg)
	return enabled, values.WithGenerator(err, NameRegistrySecrets)
}

func (g RegistrySecrets) enabled(cfg values.Values) (bool, error) {
	return values.Merge(g.Defaults(), cfg).BoolOr("registry.enabled", false)
}

func (g RegistrySecrets) Generate(cfg values.Values) (runtime.Object, error) {
	obj, err := g.generate(values.Merge(g.Defaults(), cfg))
	return finish(obj, err, NameRegistrySecrets)
}

func (g RegistrySecrets) generate(cfg values.Values) (runtime.Object, error) {
	m, err := resolveMeta(cfg)
	if err != nil {
		return nil, err
	}

	server, err := cfg.RequireString("registry.server")
	if err != nil {
		return nil, err
	}

	var data []remoteData
	for _, key := range []string{"username", "token"} {
		path := "registry." + key
		raw, err := cfg.RequireString(path)
		if err != nil {
			return nil, err
		}
		ref, err := parseRef(path, raw)
		if err != nil {
			return nil, err
		}
		data = append(data, remoteData{SecretKey: key, Ref: ref})
	}

	storeName, storeKind, err := storeRef(cfg, "registry.store")
	if err != nil {
		return nil, err
	}
	refresh, err := cfg.String("registry.refreshInterval")
	if err != nil {
		return nil, err
	}

	return newExternalSecret(m, externalSecretSpec{
		Name:            RegistrySecretName(m.Name),
		Priority:        g.Priority(),
		StoreName:       storeName,
		StoreKind:       storeKind,
		RefreshInterval: refresh,
		Target: map[string]any{
			"name":           RegistrySecretName(m.Name),
			"creationPolicy": "Owner",
			"template": map[string]any{
				"type":          string(corev1.SecretTypeDockerConfigJson),
				"engineVersion": "v2",
				"data": map[string]any{
					corev1.DockerConfigJsonKey: dockerConfigTemplate(server),
				},
			},
		},
		Data: data,
	}), nil
}

// dockerConfigTemplate returns the external-secrets template rendering a
// .dockerconfigjson for server from the username and token keys.
func dockerConfigTemplate(server string) string {
	return `{"auths":{"` + server + `":{"username":"{{ .username }}",` +
		`"password":"{{ .token }}",` +
		`"auth":"{{ printf "%s:%s" .username .token | b64enc }}"}}}`
}

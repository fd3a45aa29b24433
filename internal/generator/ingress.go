package generator

import (
	"fmt"
	"strings"

	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"

	"github.com/starburst997/charts-library/internal/values"
)

// Annotation keys produced by the ingress generator.
const (
	AnnotationClusterIssuer = "cert-manager.io/cluster-issuer"

	nginxPrefix                    = "nginx.ingress.kubernetes.io/"
	AnnotationProxyBodySize        = nginxPrefix + "proxy-body-size"
	AnnotationProxyReadTimeout     = nginxPrefix + "proxy-read-timeout"
	AnnotationProxySendTimeout     = nginxPrefix + "proxy-send-timeout"
	AnnotationProxyConnectTimeout  = nginxPrefix + "proxy-connect-timeout"
	AnnotationKeepAliveTimeout     = nginxPrefix + "upstream-keepalive-timeout"
	AnnotationLimitRPM             = nginxPrefix + "limit-rpm"
	AnnotationLimitRPS             = nginxPrefix + "limit-rps"
	AnnotationLimitConnections     = nginxPrefix + "limit-connections"
	AnnotationLimitBurstMultiplier = nginxPrefix + "limit-burst-multiplier"
	AnnotationLimitWhitelist       = nginxPrefix + "limit-whitelist"
	AnnotationConfigurationSnippet = nginxPrefix + "configuration-snippet"
)

const (
	DefaultIngressClass  = "nginx"
	DefaultClusterIssuer = "letsencrypt-http"
)

// optionalAnnotations maps ingress keys to annotations emitted only when
// the key is set.
var optionalAnnotations = []struct {
	Key        string
	Annotation string
}{
	{"ingress.proxyBodySize", AnnotationProxyBodySize},
	{"ingress.proxyReadTimeout", AnnotationProxyReadTimeout},
	{"ingress.proxySendTimeout", AnnotationProxySendTimeout},
	{"ingress.proxyConnectTimeout", AnnotationProxyConnectTimeout},
	{"ingress.keepAliveTimeout", AnnotationKeepAliveTimeout},
}

var rateLimitAnnotations = []struct {
	Key        string
	Annotation string
}{
	{"ingress.rateLimit.rpm", AnnotationLimitRPM},
	{"ingress.rateLimit.rps", AnnotationLimitRPS},
	{"ingress.rateLimit.connections", AnnotationLimitConnections},
	{"ingress.rateLimit.burstMultiplier", AnnotationLimitBurstMultiplier},
	{"ingress.rateLimit.whitelist", AnnotationLimitWhitelist},
}

var securityHeaders = []struct {
	Key    string
	Header string
}{
	{"ingress.securityHeaders.hsts", "Strict-Transport-Security"},
	{"ingress.securityHeaders.frameOptions", "X-Frame-Options"},
	{"ingress.securityHeaders.contentTypeOptions", "X-Content-Type-Options"},
	{"ingress.securityHeaders.xssProtection", "X-XSS-Protection"},
	{"ingress.securityHeaders.referrerPolicy", "Referrer-Policy"},
	{"ingress.securityHeaders.permissionsPolicy", "Permissions-Policy"},
}

// Ingress routes a host to the endpoint.
type Ingress struct{}

func (Ingress) Name() string { return NameIngress }

func (Ingress) Defaults() values.Values {
	return values.MergeAll(commonDefaults(), serviceDefaults(), values.Values{
		"ingress": map[string]any{
			"enabled":             true,
			"className":           DefaultIngressClass,
			"clusterIssuer":       DefaultClusterIssuer,
			"host":                "",
			"path":                "/",
			"pathType":            string(networkingv1.PathTypePrefix),
			"tls":                 map[string]any{"enabled": true, "secretName": ""},
			"proxyBodySize":       nil,
			"proxyReadTimeout":    nil,
			"proxySendTimeout":    nil,
			"proxyConnectTimeout": nil,
			"keepAliveTimeout":    nil,
			"annotations":         map[string]any{},
			"rateLimit": map[string]any{
				"enabled":         false,
				"rpm":             300,
				"rps":             10,
				"connections":     20,
				"burstMultiplier": 5,
				"whitelist":       "",
			},
			"securityHeaders": map[string]any{
				"enabled":            false,
				"hsts":               "max-age=31536000; includeSubDomains",
				"frameOptions":       "SAMEORIGIN",
				"contentTypeOptions": "nosniff",
				"xssProtection":      "1; mode=block",
				"referrerPolicy":     "strict-origin-when-cross-origin",
				"permissionsPolicy":  "camera=(), microphone=(), geolocation=()",
			},
		},
	})
}

func (g Ingress) Enabled(cfg values.Values) (bool, error) {
	cfg = values.Merge(g.Defaults(), cfg)
	enabled, err := cfg.BoolOr("ingress.enabled", true)
	return enabled, values.WithGenerator(err, NameIngress)
}

func (g Ingress) Generate(cfg values.Values) (runtime.Object, error) {
	ing, err := g.generate(values.Merge(g.Defaults(), cfg))
	return finish(ing, err, NameIngress)
}

func (Ingress) generate(cfg values.Values) (*networkingv1.Ingress, error) {
	m, err := resolveMeta(cfg)
	if err != nil {
		return nil, err
	}

	host, err := cfg.RequireString("ingress.host")
	if err != nil {
		return nil, err
	}
	if err := validHost(host); err != nil {
		return nil, err
	}

	path, err := cfg.String("ingress.path")
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = "/"
	}

	pathType, err := cfg.String("ingress.pathType")
	if err != nil {
		return nil, err
	}
	switch networkingv1.PathType(pathType) {
	case "":
		pathType = string(networkingv1.PathTypePrefix)
	case networkingv1.PathTypePrefix, networkingv1.PathTypeExact, networkingv1.PathTypeImplementationSpecific:
	default:
		return nil, values.NewFieldError("ingress.pathType", values.ErrTypeMismatch, "unsupported path type %q", pathType)
	}

	port, err := ServicePort(cfg)
	if err != nil {
		return nil, err
	}

	className, err := cfg.String("ingress.className")
	if err != nil {
		return nil, err
	}

	annotations, err := IngressAnnotations(cfg)
	if err != nil {
		return nil, err
	}

	tls, err := buildTLS(cfg, m.Name, host)
	if err != nil {
		return nil, err
	}

	spec := networkingv1.IngressSpec{
		TLS: tls,
		Rules: []networkingv1.IngressRule{
			{
				Host: host,
				IngressRuleValue: networkingv1.IngressRuleValue{
					HTTP: &networkingv1.HTTPIngressRuleValue{
						Paths: []networkingv1.HTTPIngressPath{
							{
								Path:     path,
								PathType: ptr.To(networkingv1.PathType(pathType)),
								Backend: networkingv1.IngressBackend{
									Service: &networkingv1.IngressServiceBackend{
										Name: m.Name,
										Port: networkingv1.ServiceBackendPort{Number: int32(port)},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	if className != "" {
		spec.IngressClassName = ptr.To(className)
	}

	return &networkingv1.Ingress{
		TypeMeta: metav1.TypeMeta{
			APIVersion: networkingv1.SchemeGroupVersion.String(),
			Kind:       "Ingress",
		},
		ObjectMeta: m.objectMeta(m.Name, annotations),
		Spec:       spec,
	}, nil
}

// IngressAnnotations returns the annotations for the resolved ingress
// configuration. Keys that are unset produce no annotation. Explicit
// ingress.annotations win over generated ones.
func IngressAnnotations(cfg values.Values) (map[string]string, error) {
	annotations := map[string]string{}

	issuer, err := cfg.String("ingress.clusterIssuer")
	if err != nil {
		return nil, err
	}
	if issuer != "" {
		annotations[AnnotationClusterIssuer] = issuer
	}

	for _, opt := range optionalAnnotations {
		if err := setIfPresent(annotations, cfg, opt.Key, opt.Annotation); err != nil {
			return nil, err
		}
	}

	rateLimit, err := cfg.BoolOr("ingress.rateLimit.enabled", false)
	if err != nil {
		return nil, err
	}
	if rateLimit {
		for _, opt := range rateLimitAnnotations {
			if err := setIfPresent(annotations, cfg, opt.Key, opt.Annotation); err != nil {
				return nil, err
			}
		}
	}

	headers, err := cfg.BoolOr("ingress.securityHeaders.enabled", false)
	if err != nil {
		return nil, err
	}
	if headers {
		snippet, err := securityHeadersSnippet(cfg)
		if err != nil {
			return nil, err
		}
		if snippet != "" {
			annotations[AnnotationConfigurationSnippet] = snippet
		}
	}

	extra, err := cfg.StringMap("ingress.annotations")
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		annotations[k] = v
	}

	return annotations, nil
}

func setIfPresent(annotations map[string]string, cfg values.Values, key, annotation string) error {
	v, err := cfg.String(key)
	if err != nil {
		return err
	}
	if v != "" {
		annotations[annotation] = v
	}
	return nil
}

// securityHeadersSnippet renders one more_set_headers line per configured
// header.
func securityHeadersSnippet(cfg values.Values) (string, error) {
	var b strings.Builder
	for _, h := range securityHeaders {
		v, err := cfg.String(h.Key)
		if err != nil {
			return "", err
		}
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "more_set_headers %q;\n", h.Header+": "+v)
	}
	return b.String(), nil
}

func buildTLS(cfg values.Values, name, host string) ([]networkingv1.IngressTLS, error) {
	enabled, err := cfg.BoolOr("ingress.tls.enabled", true)
	if err != nil || !enabled {
		return nil, err
	}
	secretName, err := cfg.String("ingress.tls.secretName")
	if err != nil {
		return nil, err
	}
	if secretName == "" {
		secretName = TLSSecretName(name)
	}
	return []networkingv1.IngressTLS{
		{Hosts: []string{host}, SecretName: secretName},
	}, nil
}

func validHost(host string) error {
	var errs []string
	if strings.HasPrefix(host, "*.") {
		errs = validation.IsWildcardDNS1123Subdomain(host)
	} else {
		errs = validation.IsDNS1123Subdomain(host)
	}
	if len(errs) > 0 {
		return values.NewFieldError("ingress.host", values.ErrTypeMismatch, "%s", strings.Join(errs, "; "))
	}
	return nil
}

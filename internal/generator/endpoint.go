package generator

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/starburst997/charts-library/internal/values"
)

const (
	// DefaultServicePort is the port the endpoint exposes.
	DefaultServicePort = 80

	// DefaultTargetPort is the container port used when neither
	// service.targetPort nor healthCheck.port is set.
	DefaultTargetPort = 8080

	// PortName names the single HTTP port on the container and service.
	PortName = "http"
)

// Endpoint builds the Service in front of the workload.
type Endpoint struct{}

func (Endpoint) Name() string { return NameEndpoint }

func (Endpoint) Defaults() values.Values {
	return values.Merge(commonDefaults(), serviceDefaults())
}

func serviceDefaults() values.Values {
	return values.Values{
		"service": map[string]any{
			"enabled":     true,
			"type":        string(corev1.ServiceTypeClusterIP),
			"port":        DefaultServicePort,
			"targetPort":  nil,
			"annotations": map[string]any{},
		},
	}
}

func (g Endpoint) Enabled(cfg values.Values) (bool, error) {
	cfg = values.Merge(g.Defaults(), cfg)
	enabled, err := cfg.BoolOr("service.enabled", true)
	return enabled, values.WithGenerator(err, NameEndpoint)
}

func (g Endpoint) Generate(cfg values.Values) (runtime.Object, error) {
	svc, err := g.generate(values.Merge(g.Defaults(), cfg))
	return finish(svc, err, NameEndpoint)
}

func (Endpoint) generate(cfg values.Values) (*corev1.Service, error) {
	m, err := resolveMeta(cfg)
	if err != nil {
		return nil, err
	}

	port, err := ServicePort(cfg)
	if err != nil {
		return nil, err
	}
	target, err := TargetPort(cfg)
	if err != nil {
		return nil, err
	}

	serviceType, err := cfg.String("service.type")
	if err != nil {
		return nil, err
	}
	switch corev1.ServiceType(serviceType) {
	case "":
		serviceType = string(corev1.ServiceTypeClusterIP)
	case corev1.ServiceTypeClusterIP, corev1.ServiceTypeNodePort, corev1.ServiceTypeLoadBalancer:
	default:
		return nil, values.NewFieldError("service.type", values.ErrTypeMismatch,
			"unsupported service type %q", serviceType)
	}

	annotations, err := cfg.StringMap("service.annotations")
	if err != nil {
		return nil, err
	}

	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			APIVersion: corev1.SchemeGroupVersion.String(),
			Kind:       "Service",
		},
		ObjectMeta: m.objectMeta(m.Name, annotations),
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceType(serviceType),
			Selector: SelectorLabels(m.Name),
			Ports: []corev1.ServicePort{
				{
					Name:       PortName,
					Port:       int32(port),
					TargetPort: intstr.FromInt32(int32(target)),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}, nil
}

// ServicePort returns service.port, defaulting to DefaultServicePort.
func ServicePort(cfg values.Values) (int, error) {
	port, ok, err := cfg.Int("service.port")
	if err != nil {
		return 0, err
	}
	if !ok {
		return DefaultServicePort, nil
	}
	return port, validPort("service.port", port)
}

// TargetPort returns the container port the endpoint forwards to. It falls
// back to healthCheck.port and then DefaultTargetPort.
func TargetPort(cfg values.Values) (int, error) {
	for _, path := range []string{"service.targetPort", "healthCheck.port"} {
		port, ok, err := cfg.Int(path)
		if err != nil {
			return 0, err
		}
		if ok {
			return port, validPort(path, port)
		}
	}
	return DefaultTargetPort, nil
}

func validPort(path string, port int) error {
	if port < 1 || port > 65535 {
		return values.NewFieldError(path, values.ErrTypeMismatch, "port %d out of range 1-65535", port)
	}
	return nil
}

// Package probe derives readiness and liveness probes for a workload from
// its resolved configuration.
//
// Probes are either supplied verbatim by the caller (healthCheck.readinessProbe,
// healthCheck.livenessProbe) or derived from a handful of tuning keys. A
// derived liveness probe always runs at twice the readiness period, whatever
// the readiness period is configured to.
package probe

import (
	"math"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/yaml"

	"github.com/starburst997/charts-library/internal/values"
)

// Derivation defaults.
const (
	DefaultPath                      = "/"
	DefaultPeriodSeconds             = 5
	DefaultReadinessInitialDelay     = 5
	DefaultLivenessInitialDelay      = 15
	DefaultTimeoutSeconds            = 3
	DefaultReadinessSuccessThreshold = 5
	DefaultFailureThreshold          = 3
	LivenessPeriodMultiplier         = 2
	MaxPeriodSeconds                 = math.MaxInt32 / LivenessPeriodMultiplier
	readinessProbeKey                = "healthCheck.readinessProbe"
	livenessProbeKey                 = "healthCheck.livenessProbe"
)

// Spec is a derived HTTP probe.
type Spec struct {
	Path                string
	Port                int
	InitialDelaySeconds int32
	PeriodSeconds       int32
	TimeoutSeconds      int32
	SuccessThreshold    int32 // zero means unset
	FailureThreshold    int32
}

// Probe converts s to a Kubernetes HTTP GET probe.
func (s Spec) Probe() *corev1.Probe {
	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: s.Path,
				Port: intstr.FromInt32(int32(s.Port)),
			},
		},
		InitialDelaySeconds: s.InitialDelaySeconds,
		PeriodSeconds:       s.PeriodSeconds,
		TimeoutSeconds:      s.TimeoutSeconds,
		SuccessThreshold:    s.SuccessThreshold,
		FailureThreshold:    s.FailureThreshold,
	}
}

// Result is the outcome of Resolve. When Disabled is true both probes are
// nil and nothing is attached to the workload.
type Result struct {
	Disabled  bool
	Readiness *corev1.Probe
	Liveness  *corev1.Probe
}

// Defaults returns the healthCheck subtree Resolve falls back to.
func Defaults() values.Values {
	return values.Values{
		"healthCheck": map[string]any{
			"enabled":       true,
			"path":          DefaultPath,
			"port":          nil,
			"periodSeconds": DefaultPeriodSeconds,
			"readiness": map[string]any{
				"initialDelaySeconds": DefaultReadinessInitialDelay,
				"timeoutSeconds":      DefaultTimeoutSeconds,
				"successThreshold":    DefaultReadinessSuccessThreshold,
				"failureThreshold":    DefaultFailureThreshold,
			},
			"liveness": map[string]any{
				"initialDelaySeconds": DefaultLivenessInitialDelay,
				"timeoutSeconds":      DefaultTimeoutSeconds,
				"failureThreshold":    DefaultFailureThreshold,
			},
			"readinessProbe": nil,
			"livenessProbe":  nil,
		},
	}
}

// Resolve derives the probes for cfg. targetPort is the container port
// probes hit unless healthCheck.port overrides it.
func Resolve(cfg values.Values, targetPort int) (Result, error) {
	cfg = values.Merge(Defaults(), cfg)

	enabled, err := cfg.BoolOr("healthCheck.enabled", true)
	if err != nil {
		return Result{}, err
	}
	if !enabled {
		return Result{Disabled: true}, nil
	}

	readiness, liveness, err := derive(cfg, targetPort)
	if err != nil {
		return Result{}, err
	}

	result := Result{Readiness: readiness.Probe()}

	if custom, err := verbatim(cfg, readinessProbeKey); err != nil {
		return Result{}, err
	} else if custom != nil {
		if custom.PeriodSeconds < 0 || custom.PeriodSeconds > MaxPeriodSeconds {
			return Result{}, values.NewFieldError(readinessProbeKey+".periodSeconds", values.ErrTypeMismatch,
				"must be between 0 and %d, got %d", MaxPeriodSeconds, custom.PeriodSeconds)
		}
		result.Readiness = custom
	}

	if custom, err := verbatim(cfg, livenessProbeKey); err != nil {
		return Result{}, err
	} else if custom != nil {
		result.Liveness = custom
		return result, nil
	}

	// The liveness period follows whichever readiness probe is in effect.
	period := result.Readiness.PeriodSeconds
	if period == 0 {
		period = readiness.PeriodSeconds
	}
	liveness.PeriodSeconds = LivenessPeriodMultiplier * period
	result.Liveness = liveness.Probe()

	return result, nil
}

// derive builds both probe specs from the tuning keys. The liveness period
// is left for Resolve to fill in.
func derive(cfg values.Values, targetPort int) (readiness, liveness Spec, err error) {
	path, err := cfg.String("healthCheck.path")
	if err != nil {
		return Spec{}, Spec{}, err
	}
	if path == "" {
		path = DefaultPath
	}

	port, ok, err := cfg.Int("healthCheck.port")
	if err != nil {
		return Spec{}, Spec{}, err
	}
	if !ok {
		port = targetPort
	} else if port < 1 || port > 65535 {
		return Spec{}, Spec{}, values.NewFieldError("healthCheck.port", values.ErrTypeMismatch, "port %d out of range 1-65535", port)
	}

	period, err := positive(cfg, "healthCheck.periodSeconds", DefaultPeriodSeconds)
	if err != nil {
		return Spec{}, Spec{}, err
	}
	if period > MaxPeriodSeconds {
		return Spec{}, Spec{}, values.NewFieldError("healthCheck.periodSeconds", values.ErrTypeMismatch,
			"must be at most %d, got %d", MaxPeriodSeconds, period)
	}

	readiness = Spec{Path: path, Port: port, PeriodSeconds: period}
	if readiness.InitialDelaySeconds, err = nonNegative(cfg, "healthCheck.readiness.initialDelaySeconds", DefaultReadinessInitialDelay); err != nil {
		return Spec{}, Spec{}, err
	}
	if readiness.TimeoutSeconds, err = positive(cfg, "healthCheck.readiness.timeoutSeconds", DefaultTimeoutSeconds); err != nil {
		return Spec{}, Spec{}, err
	}
	if readiness.SuccessThreshold, err = positive(cfg, "healthCheck.readiness.successThreshold", DefaultReadinessSuccessThreshold); err != nil {
		return Spec{}, Spec{}, err
	}
	if readiness.FailureThreshold, err = positive(cfg, "healthCheck.readiness.failureThreshold", DefaultFailureThreshold); err != nil {
		return Spec{}, Spec{}, err
	}

	liveness = Spec{Path: path, Port: port}
	if liveness.InitialDelaySeconds, err = nonNegative(cfg, "healthCheck.liveness.initialDelaySeconds", DefaultLivenessInitialDelay); err != nil {
		return Spec{}, Spec{}, err
	}
	if liveness.TimeoutSeconds, err = positive(cfg, "healthCheck.liveness.timeoutSeconds", DefaultTimeoutSeconds); err != nil {
		return Spec{}, Spec{}, err
	}
	if liveness.FailureThreshold, err = positive(cfg, "healthCheck.liveness.failureThreshold", DefaultFailureThreshold); err != nil {
		return Spec{}, Spec{}, err
	}

	return readiness, liveness, nil
}

// verbatim decodes a caller-supplied probe object at path. It returns nil
// when nothing was supplied.
func verbatim(cfg values.Values, path string) (*corev1.Probe, error) {
	m, err := cfg.Map(path)
	if err != nil || m == nil {
		return nil, err
	}

	data, err := yaml.Marshal(m.ToMap())
	if err != nil {
		return nil, values.NewFieldError(path, values.ErrTypeMismatch, "encode probe: %v", err)
	}

	var p corev1.Probe
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, values.NewFieldError(path, values.ErrTypeMismatch, "decode probe: %v", err)
	}

	if p.HTTPGet == nil && p.TCPSocket == nil && p.Exec == nil && p.GRPC == nil {
		return nil, values.NewFieldError(path, values.ErrMissingRequiredField, "probe needs one of httpGet, tcpSocket, exec or grpc")
	}

	return &p, nil
}

func positive(cfg values.Values, path string, fallback int) (int32, error) {
	n, err := intOr(cfg, path, fallback)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, values.NewFieldError(path, values.ErrTypeMismatch, "must be a positive integer, got %d", n)
	}
	return n, nil
}

func nonNegative(cfg values.Values, path string, fallback int) (int32, error) {
	n, err := intOr(cfg, path, fallback)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, values.NewFieldError(path, values.ErrTypeMismatch, "must not be negative, got %d", n)
	}
	return n, nil
}

func intOr(cfg values.Values, path string, fallback int) (int32, error) {
	n, ok, err := cfg.Int(path)
	if err != nil {
		return 0, err
	}
	if !ok {
		n = fallback
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, values.NewFieldError(path, values.ErrTypeMismatch, "%d does not fit in 32 bits", n)
	}
	return int32(n), nil
}

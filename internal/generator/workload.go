package generator

import (
	"maps"
	"slices"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"

	"github.com/starburst997/charts-library/internal/probe"
	"github.com/starburst997/charts-library/internal/values"
)

// ReloaderAnnotation makes stakater/Reloader roll the workload when a
// referenced Secret or ConfigMap changes.
const ReloaderAnnotation = "reloader.stakater.com/auto"

// Workload builds the Deployment running the application container.
type Workload struct{}

func (Workload) Name() string { return NameWorkload }

func (Workload) Defaults() values.Values {
	return values.MergeAll(
		commonDefaults(),
		serviceDefaults(),
		probe.Defaults(),
		values.Values{
			"replicas":             1,
			"revisionHistoryLimit": nil,
			"image": map[string]any{
				"repository": "",
				"tag":        "latest",
				"pullPolicy": string(corev1.PullIfNotPresent),
			},
			"command": nil,
			"args":    nil,
			"env":     map[string]any{},
			"resources": map[string]any{
				"requests": map[string]any{
					"cpu":    "50m",
					"memory": "64Mi",
				},
				"limits": map[string]any{
					"memory": "256Mi",
				},
			},
			"reloader": map[string]any{
				"enabled": true,
			},
			"podAnnotations":     map[string]any{},
			"podLabels":          map[string]any{},
			"nodeSelector":       map[string]any{},
			"serviceAccountName": "",
		},
	)
}

// Enabled is always true: every bundle has a workload.
func (Workload) Enabled(values.Values) (bool, error) { return true, nil }

func (g Workload) Generate(cfg values.Values) (runtime.Object, error) {
	deploy, err := g.generate(values.Merge(g.Defaults(), cfg))
	return finish(deploy, err, NameWorkload)
}

func (Workload) generate(cfg values.Values) (*appsv1.Deployment, error) {
	m, err := resolveMeta(cfg)
	if err != nil {
		return nil, err
	}

	container, err := buildContainer(cfg, m.Name)
	if err != nil {
		return nil, err
	}

	replicas, ok, err := cfg.Int("replicas")
	if err != nil {
		return nil, err
	}
	if !ok {
		replicas = 1
	}
	if replicas < 0 {
		return nil, values.NewFieldError("replicas", values.ErrTypeMismatch, "must not be negative, got %d", replicas)
	}

	var revisionHistory *int32
	if n, ok, err := cfg.Int("revisionHistoryLimit"); err != nil {
		return nil, err
	} else if ok {
		revisionHistory = ptr.To(int32(n))
	}

	annotations := map[string]string{}
	reload, err := cfg.BoolOr("reloader.enabled", true)
	if err != nil {
		return nil, err
	}
	if reload {
		annotations[ReloaderAnnotation] = "true"
	}

	podSpec, err := buildPodSpec(cfg, m.Name, container)
	if err != nil {
		return nil, err
	}

	podLabels, err := cfg.StringMap("podLabels")
	if err != nil {
		return nil, err
	}
	podAnnotations, err := cfg.StringMap("podAnnotations")
	if err != nil {
		return nil, err
	}

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{
			APIVersion: appsv1.SchemeGroupVersion.String(),
			Kind:       "Deployment",
		},
		ObjectMeta: m.objectMeta(m.Name, annotations),
		Spec: appsv1.DeploymentSpec{
			Replicas:             ptr.To(int32(replicas)),
			RevisionHistoryLimit: revisionHistory,
			Selector: &metav1.LabelSelector{
				MatchLabels: SelectorLabels(m.Name),
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels:      standardLabels(m.Name, mergeStringMaps(m.Labels, podLabels)),
					Annotations: mergeStringMaps(podAnnotations),
				},
				Spec: podSpec,
			},
		},
	}, nil
}

func buildPodSpec(cfg values.Values, name string, container corev1.Container) (corev1.PodSpec, error) {
	nodeSelector, err := cfg.StringMap("nodeSelector")
	if err != nil {
		return corev1.PodSpec{}, err
	}
	if len(nodeSelector) == 0 {
		nodeSelector = nil
	}

	serviceAccount, err := cfg.String("serviceAccountName")
	if err != nil {
		return corev1.PodSpec{}, err
	}

	spec := corev1.PodSpec{
		ServiceAccountName: serviceAccount,
		NodeSelector:       nodeSelector,
		Containers:         []corev1.Container{container},
	}

	registry, err := RegistrySecrets{}.enabled(cfg)
	if err != nil {
		return corev1.PodSpec{}, err
	}
	if registry {
		spec.ImagePullSecrets = []corev1.LocalObjectReference{
			{Name: RegistrySecretName(name)},
		}
	}

	return spec, nil
}

func buildContainer(cfg values.Values, name string) (corev1.Container, error) {
	image, err := imageReference(cfg)
	if err != nil {
		return corev1.Container{}, err
	}

	pullPolicy, err := cfg.String("image.pullPolicy")
	if err != nil {
		return corev1.Container{}, err
	}
	switch corev1.PullPolicy(pullPolicy) {
	case "", corev1.PullAlways, corev1.PullIfNotPresent, corev1.PullNever:
	default:
		return corev1.Container{}, values.NewFieldError("image.pullPolicy", values.ErrTypeMismatch,
			"unsupported pull policy %q", pullPolicy)
	}

	command, err := optionalStrings(cfg, "command")
	if err != nil {
		return corev1.Container{}, err
	}
	args, err := optionalStrings(cfg, "args")
	if err != nil {
		return corev1.Container{}, err
	}

	port, err := TargetPort(cfg)
	if err != nil {
		return corev1.Container{}, err
	}

	env, err := buildEnv(cfg, name)
	if err != nil {
		return corev1.Container{}, err
	}

	resources, err := buildResources(cfg)
	if err != nil {
		return corev1.Container{}, err
	}

	probes, err := probe.Resolve(cfg, port)
	if err != nil {
		return corev1.Container{}, err
	}

	return corev1.Container{
		Name:            name,
		Image:           image,
		ImagePullPolicy: corev1.PullPolicy(pullPolicy),
		Command:         command,
		Args:            args,
		Ports: []corev1.ContainerPort{
			{
				Name:          PortName,
				ContainerPort: int32(port),
				Protocol:      corev1.ProtocolTCP,
			},
		},
		Env:            env,
		Resources:      resources,
		ReadinessProbe: probes.Readiness,
		LivenessProbe:  probes.Liveness,
	}, nil
}

// imageReference joins image.repository and image.tag. A tag that is a
// digest is joined with "@".
func imageReference(cfg values.Values) (string, error) {
	repository, err := cfg.RequireString("image.repository")
	if err != nil {
		return "", err
	}
	tag, err := cfg.String("image.tag")
	if err != nil {
		return "", err
	}

	switch {
	case tag == "":
		return repository, nil
	case strings.HasPrefix(tag, "sha256:"):
		return repository + "@" + tag, nil
	default:
		return repository + ":" + tag, nil
	}
}

// buildEnv returns the plain env vars followed by the secret-backed ones,
// each group sorted by name. A secret key shadows a plain var of the same
// name.
func buildEnv(cfg values.Values, name string) ([]corev1.EnvVar, error) {
	plain, err := cfg.StringMap("env")
	if err != nil {
		return nil, err
	}

	secretKeys, err := ApplicationSecrets{}.keys(cfg)
	if err != nil {
		return nil, err
	}

	var env []corev1.EnvVar
	for _, key := range slices.Sorted(maps.Keys(plain)) {
		if slices.Contains(secretKeys, key) {
			continue
		}
		if errs := validation.IsEnvVarName(key); len(errs) > 0 {
			return nil, values.NewFieldError("env."+key, values.ErrTypeMismatch, "%s", strings.Join(errs, "; "))
		}
		env = append(env, corev1.EnvVar{Name: key, Value: plain[key]})
	}

	for _, key := range secretKeys {
		env = append(env, corev1.EnvVar{
			Name: key,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: ApplicationSecretName(name)},
					Key:                  key,
				},
			},
		})
	}

	return env, nil
}

func buildResources(cfg values.Values) (corev1.ResourceRequirements, error) {
	var req corev1.ResourceRequirements
	var err error
	if req.Requests, err = resourceList(cfg, "resources.requests"); err != nil {
		return req, err
	}
	if req.Limits, err = resourceList(cfg, "resources.limits"); err != nil {
		return req, err
	}
	return req, nil
}

func resourceList(cfg values.Values, path string) (corev1.ResourceList, error) {
	raw, err := cfg.StringMap(path)
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	list := make(corev1.ResourceList, len(raw))
	for name, value := range raw {
		if value == "" {
			continue
		}
		q, err := resource.ParseQuantity(value)
		if err != nil {
			return nil, values.NewFieldError(path+"."+name, values.ErrTypeMismatch, "%v", err)
		}
		list[corev1.ResourceName(name)] = q
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}

func optionalStrings(cfg values.Values, path string) ([]string, error) {
	items, err := cfg.StringSlice(path)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items, nil
}

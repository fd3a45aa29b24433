package generator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/starburst997/charts-library/internal/values"
)

func workloadConfig() values.Values {
	return values.Values{
		"name": "myapp",
		"image": map[string]any{
			"repository": "ghcr.io/acme/myapp",
			"tag":        "1.2.3",
		},
	}
}

func generateDeployment(t *testing.T, cfg values.Values) *appsv1.Deployment {
	t.Helper()
	obj, err := Workload{}.Generate(cfg)
	require.NoError(t, err)
	deploy, ok := obj.(*appsv1.Deployment)
	require.True(t, ok, "expected *appsv1.Deployment, got %T", obj)
	return deploy
}

func TestWorkload_Generate(t *testing.T) {
	got := generateDeployment(t, workloadConfig())

	labels := map[string]string{
		LabelAppName:      "myapp",
		LabelAppInstance:  "myapp",
		LabelAppManagedBy: ManagedBy,
	}
	want := &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        "myapp",
			Namespace:   "myapp",
			Labels:      labels,
			Annotations: map[string]string{ReloaderAnnotation: "true"},
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{MatchLabels: SelectorLabels("myapp")},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:            "myapp",
							Image:           "ghcr.io/acme/myapp:1.2.3",
							ImagePullPolicy: corev1.PullIfNotPresent,
							Ports: []corev1.ContainerPort{
								{Name: "http", ContainerPort: 8080, Protocol: corev1.ProtocolTCP},
							},
							Resources: corev1.ResourceRequirements{
								Requests: corev1.ResourceList{
									corev1.ResourceCPU:    resource.MustParse("50m"),
									corev1.ResourceMemory: resource.MustParse("64Mi"),
								},
								Limits: corev1.ResourceList{
									corev1.ResourceMemory: resource.MustParse("256Mi"),
								},
							},
							ReadinessProbe: &corev1.Probe{
								ProbeHandler: corev1.ProbeHandler{
									HTTPGet: &corev1.HTTPGetAction{Path: "/", Port: intstr.FromInt32(8080)},
								},
								InitialDelaySeconds: 5,
								PeriodSeconds:       5,
								TimeoutSeconds:      3,
								SuccessThreshold:    5,
								FailureThreshold:    3,
							},
							LivenessProbe: &corev1.Probe{
								ProbeHandler: corev1.ProbeHandler{
									HTTPGet: &corev1.HTTPGetAction{Path: "/", Port: intstr.FromInt32(8080)},
								},
								InitialDelaySeconds: 15,
								PeriodSeconds:       10,
								TimeoutSeconds:      3,
								FailureThreshold:    3,
							},
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Deployment mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkload_SelectorMatchesEndpoint(t *testing.T) {
	deploy := generateDeployment(t, workloadConfig())
	obj, err := Endpoint{}.Generate(workloadConfig())
	require.NoError(t, err)
	svc := obj.(*corev1.Service)

	assert.Equal(t, svc.Spec.Selector, deploy.Spec.Selector.MatchLabels)
	for k, v := range svc.Spec.Selector {
		assert.Equal(t, v, deploy.Spec.Template.Labels[k])
	}
}

func TestWorkload_Env(t *testing.T) {
	cfg := workloadConfig()
	cfg["env"] = map[string]any{
		"LOG_LEVEL": "debug",
		"API_KEY":   "shadowed",
		"WORKERS":   4,
	}
	cfg["secrets"] = map[string]any{
		"items": map[string]any{
			"DATABASE_URL": "myapp/database",
			"API_KEY":      "myapp/api-key",
		},
	}

	deploy := generateDeployment(t, cfg)

	secretRef := func(key string) *corev1.EnvVarSource {
		return &corev1.EnvVarSource{
			SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: "myapp-secrets"},
				Key:                  key,
			},
		}
	}
	want := []corev1.EnvVar{
		{Name: "LOG_LEVEL", Value: "debug"},
		{Name: "WORKERS", Value: "4"},
		{Name: "API_KEY", ValueFrom: secretRef("API_KEY")},
		{Name: "DATABASE_URL", ValueFrom: secretRef("DATABASE_URL")},
	}
	if diff := cmp.Diff(want, deploy.Spec.Template.Spec.Containers[0].Env); diff != "" {
		t.Errorf("env mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkload_SecretsDisabledDropsSecretEnv(t *testing.T) {
	cfg := workloadConfig()
	cfg["secrets"] = map[string]any{
		"enabled": false,
		"items":   map[string]any{"API_KEY": "myapp/api-key"},
	}

	deploy := generateDeployment(t, cfg)
	assert.Empty(t, deploy.Spec.Template.Spec.Containers[0].Env)
}

func TestWorkload_ImagePullSecrets(t *testing.T) {
	deploy := generateDeployment(t, workloadConfig())
	assert.Empty(t, deploy.Spec.Template.Spec.ImagePullSecrets)

	cfg := workloadConfig()
	cfg["registry"] = map[string]any{"enabled": true}
	deploy = generateDeployment(t, cfg)
	assert.Equal(t,
		[]corev1.LocalObjectReference{{Name: "myapp-registry"}},
		deploy.Spec.Template.Spec.ImagePullSecrets,
	)
}

func TestWorkload_Options(t *testing.T) {
	cfg := values.Merge(workloadConfig(), values.Values{
		"replicas":             3,
		"revisionHistoryLimit": 5,
		"command":              []any{"/app/server"},
		"args":                 []any{"--listen", ":9000"},
		"image":                map[string]any{"pullPolicy": "Always"},
		"service":              map[string]any{"targetPort": 9000},
		"reloader":             map[string]any{"enabled": false},
		"podAnnotations":       map[string]any{"prometheus.io/scrape": "true"},
		"podLabels":            map[string]any{"tier": "web"},
		"nodeSelector":         map[string]any{"kubernetes.io/arch": "arm64"},
		"serviceAccountName":   "myapp-sa",
	})

	deploy := generateDeployment(t, cfg)
	pod := deploy.Spec.Template
	c := pod.Spec.Containers[0]

	assert.Equal(t, ptr.To(int32(3)), deploy.Spec.Replicas)
	assert.Equal(t, ptr.To(int32(5)), deploy.Spec.RevisionHistoryLimit)
	assert.Equal(t, []string{"/app/server"}, c.Command)
	assert.Equal(t, []string{"--listen", ":9000"}, c.Args)
	assert.Equal(t, corev1.PullAlways, c.ImagePullPolicy)
	assert.Equal(t, int32(9000), c.Ports[0].ContainerPort)
	assert.Equal(t, intstr.FromInt32(9000), c.ReadinessProbe.HTTPGet.Port)
	assert.NotContains(t, deploy.Annotations, ReloaderAnnotation)
	assert.Equal(t, map[string]string{"prometheus.io/scrape": "true"}, pod.Annotations)
	assert.Equal(t, "web", pod.Labels["tier"])
	assert.Equal(t, map[string]string{"kubernetes.io/arch": "arm64"}, pod.Spec.NodeSelector)
	assert.Equal(t, "myapp-sa", pod.Spec.ServiceAccountName)
}

func TestWorkload_HealthCheckDisabled(t *testing.T) {
	cfg := workloadConfig()
	cfg["healthCheck"] = map[string]any{"enabled": false}

	c := generateDeployment(t, cfg).Spec.Template.Spec.Containers[0]
	assert.Nil(t, c.ReadinessProbe)
	assert.Nil(t, c.LivenessProbe)
}

func TestWorkload_ImageReference(t *testing.T) {
	tests := map[string]struct {
		tag  any
		want string
	}{
		"tag":    {tag: "1.2.3", want: "ghcr.io/acme/myapp:1.2.3"},
		"no tag": {tag: "", want: "ghcr.io/acme/myapp"},
		"digest": {tag: "sha256:abc123", want: "ghcr.io/acme/myapp@sha256:abc123"},
		"number": {tag: 2, want: "ghcr.io/acme/myapp:2"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := workloadConfig()
			cfg["image"].(map[string]any)["tag"] = tc.tag
			c := generateDeployment(t, cfg).Spec.Template.Spec.Containers[0]
			assert.Equal(t, tc.want, c.Image)
		})
	}
}

func TestWorkload_Errors(t *testing.T) {
	tests := map[string]struct {
		override values.Values
		wantErr  error
		path     string
	}{
		"missing repository": {
			override: values.Values{"image": map[string]any{"repository": nil}},
			wantErr:  values.ErrMissingRequiredField,
			path:     "image.repository",
		},
		"bad quantity": {
			override: values.Values{"resources": map[string]any{"limits": map[string]any{"memory": "lots"}}},
			wantErr:  values.ErrTypeMismatch,
			path:     "resources.limits.memory",
		},
		"replicas not a number": {
			override: values.Values{"replicas": "three"},
			wantErr:  values.ErrTypeMismatch,
			path:     "replicas",
		},
		"negative replicas": {
			override: values.Values{"replicas": -1},
			wantErr:  values.ErrTypeMismatch,
			path:     "replicas",
		},
		"env is a list": {
			override: values.Values{"env": []any{"A=b"}},
			wantErr:  values.ErrTypeMismatch,
			path:     "env",
		},
		"invalid env name": {
			override: values.Values{"env": map[string]any{"1BAD": "x"}},
			wantErr:  values.ErrTypeMismatch,
			path:     "env.1BAD",
		},
		"unknown pull policy": {
			override: values.Values{"image": map[string]any{"pullPolicy": "Sometimes"}},
			wantErr:  values.ErrTypeMismatch,
			path:     "image.pullPolicy",
		},
		"health check port out of range with explicit target port": {
			override: values.Values{
				"service":     map[string]any{"targetPort": 8080},
				"healthCheck": map[string]any{"port": 70000},
			},
			wantErr: values.ErrTypeMismatch,
			path:    "healthCheck.port",
		},
		"health check period": {
			override: values.Values{"healthCheck": map[string]any{"periodSeconds": "often"}},
			wantErr:  values.ErrTypeMismatch,
			path:     "healthCheck.periodSeconds",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Workload{}.Generate(values.Merge(workloadConfig(), tc.override))
			require.ErrorIs(t, err, tc.wantErr)

			var fe *values.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, NameWorkload, fe.Generator)
			assert.Equal(t, tc.path, fe.Path)
		})
	}
}

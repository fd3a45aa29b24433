// Package generator turns resolved configuration into Kubernetes resource
// descriptions.
//
// Each generator owns an embedded default document. Generate merges the
// caller's configuration on top of those defaults and derives one object:
//
//   - [Namespace]: the target Namespace
//   - [Endpoint]: a ClusterIP Service selecting the workload
//   - [Workload]: the Deployment, wired to the secret bundles and probes
//   - [Ingress]: host routing with cert-manager and ingress-nginx annotations
//   - [ApplicationSecrets]: an ExternalSecret fetching application secrets
//   - [RegistrySecrets]: an ExternalSecret producing registry credentials
//
// Generators are stateless values and safe for concurrent use.
package generator

// Package values implements the configuration tree used by every resource
// generator.
//
// A configuration document is a [Values] mapping whose leaves are scalars,
// nested mappings or sequences. The rendering pipeline is:
//
//   - Layering: generator defaults, the override document and call-site
//     parameters are folded with [Merge] / [MergeAll]
//   - Templating: string leaves containing "{{" are rendered against the
//     resolved tree with [RenderTemplates]
//   - Access: generators read fields through typed, path-addressed getters
//     that report [ErrTypeMismatch] and [ErrMissingRequiredField] as
//     [*FieldError] values
//
// # Merge Semantics
//
// Mappings merge key by key, recursively. Everything else (scalars,
// sequences, nil) is replaced wholesale by the override:
//
//	defaults:  {ingress: {enabled: true, className: nginx, hosts: [a, b]}}
//	override:  {ingress: {hosts: [c]}}
//	result:    {ingress: {enabled: true, className: nginx, hosts: [c]}}
package values

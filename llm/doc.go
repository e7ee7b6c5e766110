// Package llm defines provider-agnostic chat completion types and the
// Provider interface that completion backends implement.
//
// Backends live in sub-packages (see llm/openai) and are selected by name
// through a provider.Registry.
package llm

// Package driven defines interfaces for infrastructure the core depends on:
// the external mermaid renderer, the pluggable storage strategies, the
// artifact store, and configuration. These are the "driven" ports in
// hexagonal architecture terminology - the application drives them.
//
// Implementations live under internal/adapters/driven, internal/renderer,
// and internal/strategy.
package driven

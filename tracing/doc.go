// Package tracing wires OpenTelemetry into environment loading. Loaders open
// spans through StartSpan/EndSpan; nothing is exported until Init or
// InitWithExporter installs a provider.
package tracing

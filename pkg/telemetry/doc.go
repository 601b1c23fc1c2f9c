// Package telemetry wires OpenTelemetry tracing and metrics for archwise.
//
// It centralises trace provider setup and records compliance-resolution and
// recommendation outcomes as otel counters and span events, so operators can
// see how often regional frameworks are suppressed and how often the model
// invents frameworks outside the vocabulary.
package telemetry

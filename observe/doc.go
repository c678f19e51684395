// Package observe provides telemetry for the shape codec: structured JSON
// logging, OpenTelemetry metrics for encode/decode traffic and cache
// behavior, and tracing of codec operations.
package observe

// Package services defines shared utilities consumed by the conversion
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs and correlation identifiers for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (timeout vs tool failure vs validation) uniform across
//     the executor and the HTTP surface.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// stays consistent.
package services

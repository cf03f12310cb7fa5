// Package services defines shared utilities consumed by the pipeline
// components and external gateways.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, commands, and match identifiers
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     at the worker loop boundary (not found vs fetch vs publish vs decode).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services

// Package logging builds the shared slog logger and the standardized
// structured attributes used across the pipeline. Console output renders
// compact operator-facing lines; json output is for aggregation.
package logging

// Package diag defines the diagnostic model shared by scene validation, generation
// and shader compilation.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error, defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with a stable string form.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary: a Location naming the authored fragment and a line local to it.
//   - Notes: optional secondary locations with additional context.
//
// A Location whose Origin is the default identifier refers to code the user did
// not write. Its Line, when present, counts lines of the generated shader.
//
// # Emitting diagnostics
//
// Producers use a Reporter so emission stays decoupled from storage. Scene
// validation constructs a ReportBuilder via ReportError/ReportWarning and chains
// WithNote before calling Emit. BagReporter aggregates into a Bag, which supports
// sorting, deduplication and filtering. DedupReporter drops repeats before they
// reach the next reporter.
//
// # Consumers
//
//   - internal/diagfmt renders diagnostics as pretty text, short lines or JSON.
//   - internal/driver turns back-mapped compiler output into diagnostics.
//
// The model stays deterministic and serialisable so results can be cached on disk
// and compared in tests.
package diag

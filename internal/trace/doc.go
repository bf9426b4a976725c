// Package trace records what the generation pipeline is doing and how long each
// step takes.
//
// # Usage
//
//	shadeweave check --trace=- --trace-level=pass scenes/room.json
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes every event immediately (text, NDJSON or Chrome JSON)
//   - RingTracer: keeps the last N events in memory, dumped when the command ends
//   - MultiTracer: fans events out to several tracers
//   - Heartbeat: wraps a tracer and periodically reports the passes still open,
//     including a running compiler child
//
// # Levels and scopes
//
// Events carry a Scope; the tracer Level decides which scopes are kept.
//
//   - ScopeDriver: CLI commands, scene checks and whole recompiles (LevelPhase and up)
//   - ScopePass: load, generate, compile and back-map (LevelPhase and up)
//   - ScopeSection: template sections (LevelDetail and up)
//   - ScopeFragment: individual fragments (LevelDebug)
//
// # Context propagation
//
// The context carries the tracer, the innermost span, the scene path and the
// section being built. Events pick all of them up:
//
//	ctx = trace.WithScene(trace.WithTracer(ctx, tracer), path)
//	span, ctx := trace.StartSpan(ctx, trace.ScopePass, "generate")
//	defer span.End("")
//	span, ctx = trace.StartSection(ctx, "library")
//	trace.FragmentPoint(ctx, provenance.Library(0), "helpers")
package trace

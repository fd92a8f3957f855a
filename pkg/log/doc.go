/*
Package log provides structured logging for the treasury and loader using
zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support
filtering by severity.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: trace/debug/info/warn/error       │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("treasury")                │          │
	│  │  - WithAsset(assetID)                       │          │
	│  │  - WithImporter(name)                       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  JSON Format:                               │          │
	│  │  {"level":"info","asset":"...","message":"asset stored"} │
	│  │  Console Format:                            │          │
	│  │  10:30AM INF asset stored asset=...         │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{
		Level:      log.LevelFromVerbosity(verboseFlag),
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Info("treasury ready")

	log.Logger.Info().
		Str("asset", assetID.String()).
		Str("importer", importerName).
		Msg("asset stored")

	assetLog := log.WithAsset(assetID.String())
	assetLog.Warn().Msg("source stale, re-importing")

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance, set once by Init
  - init() calls Init with a sane Warn-level default so a package that
    logs before main() runs (tests, plugin init) never panics on a nil
    logger
  - Accessible from every package without passing a logger explicitly

Structured Logging Pattern:
  - Typed fields (.Str, .Err) instead of string concatenation
  - Parseable by log aggregation tools
*/
package log

// Package cli implements the pubfig command-line interface.
//
// # Commands
//
//   - render: draw one chart kind from a data file
//   - gallery: render the built-in reference figures
//   - serve: run the HTTP render service
//   - cache: inspect or clear the artifact cache
//
// # Configuration
//
// Defaults come from style.Default and the gallery entries. A TOML file
// given with --config overrides them, and flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

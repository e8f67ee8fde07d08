// Package cli implements the pulse command-line interface.
//
// Each file holds one Cobra command (or command group) and the function it
// delegates to. RunE bodies only load config and parse flags; the work
// happens in plain functions that take an io.Writer and their
// dependencies, which is what the tests call.
//
// # Command Structure
//
//	pulse dashboard          - Interactive dashboard (bubbletea)
//	pulse serve              - Metrics feed server (websocket, /healthz, /metrics)
//	pulse status             - One-shot feed probe with a readings table
//	pulse widget ...         - Add, list, set, move, resize, restack, remove widgets
//	pulse theme [mode]       - Show or change the saved theme
//	pulse config ...         - init, show, set, path
//	pulse doctor [--fix]     - Diagnose config, storage, feed, and terminal
//	pulse version            - Build information
//	pulse completion <shell> - Shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) live on the root command.
// --verbose sets PULSE_DEBUG so every package logger emits debug lines.
// Config is resolved through config.LoadOrDefault, so commands work with
// no config file at all.
//
// Widget edits go through the same dashboard.Store the dashboard uses, and
// move/resize run through layout.Engine so the overlap rules match what a
// mouse drag would allow.
package cli

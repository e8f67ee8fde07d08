// Package ui provides the styled terminal output used by pulse's
// non-interactive commands.
//
// The package includes a spinner, a branded header, and tables rendered
// with Lip Gloss and the Bubbles table component. The full-screen
// dashboard lives in the monitor package and has its own theme palettes.
//
// # Components Overview
//
//	Spinner           - Animated status indicator while dialing the feed
//	RenderHeader      - Banner printed by `pulse serve`
//	RenderWidgetTable - Saved layout for `pulse widget list`
//	RenderMetricTable - Latest feed readings for `pulse status`
//
// # Color Scheme
//
// Colors are truecolor hex values from the neon palette:
//
//	ColorSuccess   (green)  - Healthy readings, finished checks
//	ColorError     (red)    - Failures and critical readings
//	ColorWarning   (amber)  - Warnings
//	ColorInfo      (cyan)   - Neutral readings
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Use DisableColors() to switch to monochrome output (for --no-color).
//
// # Spinner Usage
//
//	s := ui.NewSpinner("Connecting to ws://localhost:4000/ws")
//	s.Start()
//	// ... wait for the first snapshot ...
//	s.Success() // or s.FailWith(reason)
package ui

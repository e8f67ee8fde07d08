// Package monitor implements the terminal dashboard: a canvas of widgets
// that can be dragged and resized with the mouse, fed by the metrics
// stream.
//
// # Architecture
//
// The package uses the Bubble Tea framework, which follows The Elm Architecture
// (Model-Update-View pattern):
//
//   - Model: holds the store, layout engine, session, and selection state
//   - Update: processes keystrokes, mouse gestures, samples, and poll ticks
//   - View: paints widget boxes onto a fixed-size canvas, back to front
//
// # Coordinates
//
// Widget geometry lives in the store in pixels. Each terminal cell stands
// for CellWidth x CellHeight pixels, so a 300x250 widget is drawn 30
// columns wide and 12 rows tall. Mouse positions are converted to the
// pixel at the center of the cell under the pointer before they reach the
// layout engine.
//
// # Message Flow
//
//  1. Init subscribes one sampler per metric on the canvas
//  2. Sampler ticks are forwarded by Bridge as SampleMsg or SampleErrorMsg
//  3. SampleMsg appends a point to the store's series for that metric
//  4. tickMsg re-reads the connection state for the banner
//  5. View re-renders the canvas from the store
//
// # Layout Modes
//
// The canvas follows the layout engine's viewport class, computed from the
// terminal width in pixels:
//
//	mobile   (<768 px)    - single stacked column, selection only
//	tablet   (768-1199)   - two stacked columns, selection only
//	desktop  (1200+)      - free-form positions, drag and resize
//
// # Keyboard Shortcuts
//
// Bindings are defined in keybindings.go and listed in the help overlay
// (press ?).
package monitor

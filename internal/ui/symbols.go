package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Check passed
	SymbolFail     = "✗" // Check failed
	SymbolPending  = "○" // No data yet
	SymbolProgress = "◐" // In progress
	SymbolComplete = "●" // Done (alternative to success)
	SymbolSkipped  = "⊘" // Skipped
	SymbolWarning  = "⚠" // Warning
)

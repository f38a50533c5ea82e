package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Operation completed successfully
	SymbolFail     = "✗" // Operation failed
	SymbolPending  = "○" // Not yet started / offline
	SymbolProgress = "◐" // In progress
	SymbolComplete = "●" // Done / online
	SymbolSkipped  = "⊘" // Skipped
)

// StatusSymbol returns the online/offline indicator for device listings.
func StatusSymbol(online bool) string {
	if online {
		return styled(ColorSuccess, SymbolComplete)
	}
	return styled(ColorMuted, SymbolPending)
}

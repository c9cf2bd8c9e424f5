package ui

// Status symbols.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolComplete = "●"
	SymbolArrow    = "→"
)

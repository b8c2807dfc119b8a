package explorer

// Step constants for the results pane
const (
	StepList = iota
	StepDetails
)

// DefaultWidth is the default terminal width fallback
const DefaultWidth = 80

// LogHeight is the number of progress lines kept visible
const LogHeight = 8

// MaxListRows caps the project rows rendered at once
const MaxListRows = 15

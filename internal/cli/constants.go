package cli

// Default values for CLI flags and formatted output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
)

// outputJSON selects machine-readable command output.
const outputJSON = "json"

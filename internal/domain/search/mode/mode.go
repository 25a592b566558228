package mode

// Mode selects the match profile and pagination bounds of a query.
type Mode string

// Query mode constants.
const (
	// Search is the full ranked search with offset pagination.
	Search Mode = "search"
	// Suggestions is the as-you-type prefix search with highlights.
	Suggestions Mode = "suggestions"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Search || m == Suggestions
}

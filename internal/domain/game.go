package domain

// Game represents a single historical game under simulation.
// Corresponds to the games table in Postgres.
type Game struct {
	GameID     string // stable external identifier
	Season     string // e.g. "2023-24"
	HomeTeam   string
	AwayTeam   string
	StartTime  int64 // scheduled tip-off, Unix ms
	FinalHome  int   // final home score
	FinalAway  int   // final away score
	HomeWon    bool
	ReviewFlag string // non-empty when alignment flagged the game for review
}

// Split identifies one of the disjoint game partitions used for
// parameter selection and out-of-sample evaluation.
type Split string

// Split constants.
const (
	SplitTrain Split = "train"
	SplitValid Split = "valid"
	SplitTest  Split = "test"
)

// Splits lists all splits in canonical order.
var Splits = []Split{SplitTrain, SplitValid, SplitTest}

// Valid reports whether s is a known split.
func (s Split) Valid() bool {
	switch s {
	case SplitTrain, SplitValid, SplitTest:
		return true
	}
	return false
}

// SplitAssignment maps a game to its split.
// Corresponds to the split_assignments table in Postgres.
type SplitAssignment struct {
	GameID string
	Season string
	Split  Split
}

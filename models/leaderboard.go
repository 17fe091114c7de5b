package models

// BestCCERow is one leaderboard row for the lowest-loss ranking: the best
// (minimum) categorical cross-entropy any submission of the group achieved.
type BestCCERow struct {
	GroupID   int     `json:"group" db:"group_id"`
	GroupName string  `json:"group_name" db:"group_name"`
	MinCCE    float64 `json:"min_cce" db:"min_cce"`
}

// BestChoicesRow is one leaderboard row for the most-correct ranking: the
// highest right-prediction count any submission of the group achieved.
type BestChoicesRow struct {
	GroupID   int    `json:"group" db:"group_id"`
	GroupName string `json:"group_name" db:"group_name"`
	MaxRight  int    `json:"max_right" db:"max_right"`
}

// Leaderboard bundles both rankings for a single render.
type Leaderboard struct {
	BestCCE     []BestCCERow     `json:"best_cce"`
	BestChoices []BestChoicesRow `json:"best_choices"`
}

package domain

// OptionResult is one row of a tally, ordered by option position.
// Votes counts ballots naming the option; Weight is the accumulated voter
// weight behind them (equal to Votes on unweighted elections).
type OptionResult struct {
	Option     Option  `json:"option"`
	Votes      int64   `json:"votes"`
	Weight     float64 `json:"weight"`
	Percentage float64 `json:"percentage"`
}

type QuorumStatus struct {
	Type     QuorumType `json:"type"`
	Current  float64    `json:"current"`
	Required float64    `json:"required"`
	Reached  bool       `json:"reached"`
}

type Turnout struct {
	Eligible   int     `json:"eligible"`
	Attended   int     `json:"attended"`
	Percentage float64 `json:"percentage"`
}

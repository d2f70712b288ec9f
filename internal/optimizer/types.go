package optimizer

// Position is one of the four player position classes.
type Position string

const (
	Goalkeeper Position = "GK"
	Defender   Position = "DEF"
	Midfielder Position = "MID"
	Forward    Position = "FWD"
)

// Positions lists the position classes in squad order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// Valid reports whether p is a known position label.
func (p Position) Valid() bool {
	switch p {
	case Goalkeeper, Defender, Midfielder, Forward:
		return true
	}
	return false
}

// Squad rules. Costs are in tenths of a million, so the 1000 budget is
// a spend ceiling of 100.0.
const (
	SquadSize    = 15
	LineupSize   = 11
	BudgetTenths = 1000
	TeamCap      = 3
)

// SquadQuota is the exact per-position composition of a legal squad.
var SquadQuota = map[Position]int{
	Goalkeeper: 2,
	Defender:   5,
	Midfielder: 5,
	Forward:    3,
}

// Candidate is one player's optimization-relevant record. Candidates are
// immutable once the pool is built; a fresh pool is constructed per request.
type Candidate struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Position        Position `json:"position"`
	TeamID          int      `json:"team_id"`
	Cost            int      `json:"cost"`
	PredictedPoints float64  `json:"predicted_points"`
	Locked          bool     `json:"locked"`
}

// SquadResult is the outcome of the squad selection stage.
type SquadResult struct {
	Members       []Candidate `json:"members"`
	TotalCost     int         `json:"total_cost"`
	TotalPoints   float64     `json:"total_points"`
	TimeLimited   bool        `json:"time_limited"`
	NodesExplored int64       `json:"nodes_explored"`
}

// LineupResult is the outcome of the lineup and captain stage.
type LineupResult struct {
	XIIDs     []int     `json:"xi_ids"`
	CaptainID int       `json:"captain_id"`
	Formation Formation `json:"formation"`
	// TotalPoints is the plain XI sum; ExpectedPoints counts the captain
	// twice.
	TotalPoints    float64 `json:"total_points"`
	ExpectedPoints float64 `json:"expected_points"`
}

// TeamSelection is the assembled response of a full pick-team run:
// squad, lineup ids and captain, produced together and discarded after the
// request.
type TeamSelection struct {
	Squad          []Candidate `json:"squad"`
	XIIDs          []int       `json:"xi_ids"`
	CaptainID      int         `json:"captain_id"`
	Formation      string      `json:"formation"`
	TotalCost      int         `json:"total_cost"`
	TotalPoints    float64     `json:"total_points"`
	ExpectedPoints float64     `json:"expected_points"`
	TimeLimited    bool        `json:"time_limited"`
}

// ProgressUpdate reports solver progress for streaming to clients.
type ProgressUpdate struct {
	Phase         string  `json:"phase"`
	NodesExplored int64   `json:"nodes_explored"`
	BestScore     float64 `json:"best_score"`
	ElapsedMs     int64   `json:"elapsed_ms"`
}

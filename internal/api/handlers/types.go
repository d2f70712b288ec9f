package handlers

import (
	"time"

	"github.com/fplpredict/optimizer-service/internal/optimizer"
)

// PlayerRow is one candidate as supplied by the prediction pipeline.
// PredictedPoints may be omitted when RecentPoints is given; the form scorer
// then derives the score from the gameweek history (most recent first).
type PlayerRow struct {
	ID              int       `json:"id" binding:"required"`
	Name            string    `json:"name" binding:"required"`
	Position        string    `json:"position" binding:"required"`
	TeamID          int       `json:"team_id"`
	Cost            int       `json:"cost" binding:"required"`
	PredictedPoints float64   `json:"predicted_points"`
	RecentPoints    []float64 `json:"recent_points,omitempty"`
}

// PickTeamRequest is the pick-team request body.
type PickTeamRequest struct {
	Players []PlayerRow `json:"players" binding:"required"`
	Locked  []string    `json:"locked,omitempty"`

	// Optional solver budget overrides, capped by server configuration.
	TimeBudgetMs int   `json:"time_budget_ms,omitempty"`
	NodeBudget   int64 `json:"node_budget,omitempty"`
}

// TransfersRequest asks for the best squad reachable from the current one
// with an exact number of transfers.
type TransfersRequest struct {
	PickTeamRequest
	CurrentSquadIDs []int `json:"current_squad_ids" binding:"required"`
	Transfers       int   `json:"transfers"`
}

// PickTeamResponse is the success payload: the full squad records, the
// starting eleven ids, and the captain id.
type PickTeamResponse struct {
	Squad          []optimizer.Candidate `json:"squad"`
	XIIDs          []int                 `json:"xi_ids"`
	CaptainID      int                   `json:"captain_id"`
	Formation      string                `json:"formation"`
	TotalCost      int                   `json:"total_cost"`
	ExpectedPoints float64               `json:"expected_points"`
	TimeLimited    bool                  `json:"time_limited"`
	OptimizationID string                `json:"optimization_id"`
}

// ErrorResponse is the structured failure payload.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

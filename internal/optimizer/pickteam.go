package optimizer

import (
	"context"
)

// PickTeam runs the full two-stage selection: squad, then lineup and captain
// within it, and assembles the response triple. Pure computation over the
// pool; nothing is retained afterwards.
func PickTeam(ctx context.Context, pool *Pool, opts SolveOptions) (*TeamSelection, error) {
	squad, err := SelectSquad(ctx, pool, opts)
	if err != nil {
		return nil, err
	}
	return assemble(squad)
}

// PickTeamWithTransfers is PickTeam under an exact-transfer-count constraint
// against an existing squad.
func PickTeamWithTransfers(ctx context.Context, pool *Pool, currentIDs []int, transfers int, opts SolveOptions) (*TeamSelection, error) {
	squad, err := SelectSquadWithTransfers(ctx, pool, currentIDs, transfers, opts)
	if err != nil {
		return nil, err
	}
	return assemble(squad)
}

func assemble(squad *SquadResult) (*TeamSelection, error) {
	lineup, err := ChooseLineup(squad.Members)
	if err != nil {
		return nil, err
	}

	return &TeamSelection{
		Squad:          squad.Members,
		XIIDs:          lineup.XIIDs,
		CaptainID:      lineup.CaptainID,
		Formation:      lineup.Formation.String(),
		TotalCost:      squad.TotalCost,
		TotalPoints:    squad.TotalPoints,
		ExpectedPoints: lineup.ExpectedPoints,
		TimeLimited:    squad.TimeLimited,
	}, nil
}

package optimizer

import (
	"context"
	"fmt"
)

// SelectSquadWithTransfers finds the best legal squad whose symmetric
// difference with the caller's current 15 is exactly 2*transfers, i.e.
// exactly `transfers` players bought and the same number sold. All standard
// squad constraints apply unchanged.
func SelectSquadWithTransfers(ctx context.Context, pool *Pool, currentIDs []int, transfers int, opts SolveOptions) (*SquadResult, error) {
	if len(currentIDs) != SquadSize {
		return nil, fmt.Errorf("current squad must contain exactly %d player ids, got %d", SquadSize, len(currentIDs))
	}
	if transfers < 0 || transfers > SquadSize {
		return nil, fmt.Errorf("transfers must be between 0 and %d, got %d", SquadSize, transfers)
	}

	owned := make(map[int]bool, SquadSize)
	for _, id := range currentIDs {
		if _, ok := pool.ByID(id); !ok {
			return nil, fmt.Errorf("current squad player %d not found in candidate pool", id)
		}
		if owned[id] {
			return nil, fmt.Errorf("current squad lists player %d twice", id)
		}
		owned[id] = true
	}

	return selectSquad(ctx, pool, opts, &transferConstraint{owned: owned, target: transfers})
}

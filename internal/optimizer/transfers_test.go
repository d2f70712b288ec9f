package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weakCurrentSquad is the bottom pick of evenPool(4, 7, 7, 5) at every
// position: plenty of headroom for upgrades.
func weakCurrentSquad() []int {
	return []int{3, 4, 7, 8, 9, 10, 11, 14, 15, 16, 17, 18, 21, 22, 23}
}

func transferDiff(currentIDs []int, res *SquadResult) (bought, sold int) {
	owned := make(map[int]bool, len(currentIDs))
	for _, id := range currentIDs {
		owned[id] = true
	}
	kept := make(map[int]bool, len(res.Members))
	for _, c := range res.Members {
		kept[c.ID] = true
		if !owned[c.ID] {
			bought++
		}
	}
	for _, id := range currentIDs {
		if !kept[id] {
			sold++
		}
	}
	return bought, sold
}

func TestSelectSquadWithTransfers_ZeroKeepsCurrentSquad(t *testing.T) {
	pool := evenPool(t, 4, 7, 7, 5)
	current := weakCurrentSquad()

	res, err := SelectSquadWithTransfers(context.Background(), pool, current, 0, SolveOptions{})
	require.NoError(t, err)
	assertLegalSquad(t, res, BudgetTenths, TeamCap)

	assert.Equal(t, current, squadIDs(res), "zero transfers must return the current squad unchanged")
}

func TestSelectSquadWithTransfers_SingleBestSwap(t *testing.T) {
	pool := evenPool(t, 4, 7, 7, 5)
	current := weakCurrentSquad()

	base, err := SelectSquadWithTransfers(context.Background(), pool, current, 0, SolveOptions{})
	require.NoError(t, err)

	res, err := SelectSquadWithTransfers(context.Background(), pool, current, 1, SolveOptions{})
	require.NoError(t, err)
	assertLegalSquad(t, res, BudgetTenths, TeamCap)

	bought, sold := transferDiff(current, res)
	assert.Equal(t, 1, bought)
	assert.Equal(t, 1, sold)

	// The biggest single upgrade is the worst defender for the best one,
	// a 1.5 point gain. The midfield swap ties on points but loses the
	// id tie-break.
	assert.Contains(t, squadIDs(res), 5)
	assert.NotContains(t, squadIDs(res), 11)
	assert.InDelta(t, base.TotalPoints+1.5, res.TotalPoints, 1e-9)
}

func TestSelectSquadWithTransfers_ExactCountIsEnforced(t *testing.T) {
	pool := evenPool(t, 4, 7, 7, 5)
	current := weakCurrentSquad()

	res, err := SelectSquadWithTransfers(context.Background(), pool, current, 3, SolveOptions{})
	require.NoError(t, err)
	assertLegalSquad(t, res, BudgetTenths, TeamCap)

	bought, sold := transferDiff(current, res)
	assert.Equal(t, 3, bought, "exactly three players must be bought")
	assert.Equal(t, 3, sold, "exactly three players must be sold")
}

func TestSelectSquadWithTransfers_ValidatesInput(t *testing.T) {
	pool := evenPool(t, 4, 7, 7, 5)

	t.Run("wrong squad size", func(t *testing.T) {
		_, err := SelectSquadWithTransfers(context.Background(), pool, []int{1, 2, 3}, 1, SolveOptions{})
		assert.ErrorContains(t, err, "exactly 15 player ids")
	})

	t.Run("negative transfers", func(t *testing.T) {
		_, err := SelectSquadWithTransfers(context.Background(), pool, weakCurrentSquad(), -1, SolveOptions{})
		assert.ErrorContains(t, err, "between 0 and 15")
	})

	t.Run("too many transfers", func(t *testing.T) {
		_, err := SelectSquadWithTransfers(context.Background(), pool, weakCurrentSquad(), 16, SolveOptions{})
		assert.ErrorContains(t, err, "between 0 and 15")
	})

	t.Run("unknown player id", func(t *testing.T) {
		current := weakCurrentSquad()
		current[0] = 999
		_, err := SelectSquadWithTransfers(context.Background(), pool, current, 1, SolveOptions{})
		assert.ErrorContains(t, err, "not found in candidate pool")
	})

	t.Run("duplicate player id", func(t *testing.T) {
		current := weakCurrentSquad()
		current[1] = current[0]
		_, err := SelectSquadWithTransfers(context.Background(), pool, current, 1, SolveOptions{})
		assert.ErrorContains(t, err, "twice")
	})
}

func TestSelectSquadWithTransfers_UnreachableCount(t *testing.T) {
	// The pool is exactly the current squad; there is nobody to buy.
	pool := evenPool(t, 2, 5, 5, 3)
	current := squadIDsOf(pool)

	_, err := SelectSquadWithTransfers(context.Background(), pool, current, 1, SolveOptions{})
	var inf *InfeasibleError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, ReasonTransferCount, inf.Reason)
}

func squadIDsOf(pool *Pool) []int {
	ids := make([]int, 0, pool.Size())
	for _, c := range pool.Candidates() {
		ids = append(ids, c.ID)
	}
	return ids
}

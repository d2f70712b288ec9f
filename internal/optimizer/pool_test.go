package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPool_SortsByID(t *testing.T) {
	rows := []Candidate{
		{ID: 30, Name: "Saka", Position: Midfielder, TeamID: 1, Cost: 87, PredictedPoints: 6.1},
		{ID: 10, Name: "Haaland", Position: Forward, TeamID: 2, Cost: 151, PredictedPoints: 8.9},
		{ID: 20, Name: "Raya", Position: Goalkeeper, TeamID: 1, Cost: 55, PredictedPoints: 4.2},
	}

	pool, err := BuildPool(rows, nil)
	require.NoError(t, err)
	require.Equal(t, 3, pool.Size())

	ids := make([]int, 0, pool.Size())
	for _, c := range pool.Candidates() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{10, 20, 30}, ids)

	c, ok := pool.ByID(20)
	require.True(t, ok)
	assert.Equal(t, "Raya", c.Name)

	_, ok = pool.ByID(99)
	assert.False(t, ok)
}

func TestBuildPool_EmptyPool(t *testing.T) {
	_, err := BuildPool(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestBuildPool_RejectsDuplicateIDs(t *testing.T) {
	rows := []Candidate{
		{ID: 1, Name: "Haaland", Position: Forward, TeamID: 1, Cost: 151, PredictedPoints: 8.9},
		{ID: 1, Name: "Watkins", Position: Forward, TeamID: 2, Cost: 90, PredictedPoints: 5.5},
	}
	_, err := BuildPool(rows, nil)
	assert.ErrorContains(t, err, "duplicate candidate id 1")
}

func TestBuildPool_RejectsBadRows(t *testing.T) {
	_, err := BuildPool([]Candidate{
		{ID: 1, Name: "Haaland", Position: "ST", TeamID: 1, Cost: 151, PredictedPoints: 8.9},
	}, nil)
	assert.ErrorContains(t, err, "unknown position")

	_, err = BuildPool([]Candidate{
		{ID: 1, Name: "Haaland", Position: Forward, TeamID: 1, Cost: 0, PredictedPoints: 8.9},
	}, nil)
	assert.ErrorContains(t, err, "non-positive cost")
}

func TestBuildPool_ResolvesLocksCaseInsensitively(t *testing.T) {
	rows := []Candidate{
		{ID: 1, Name: "Haaland", Position: Forward, TeamID: 1, Cost: 151, PredictedPoints: 8.9},
		{ID: 2, Name: "Salah", Position: Midfielder, TeamID: 2, Cost: 129, PredictedPoints: 8.2},
		{ID: 3, Name: "Watkins", Position: Forward, TeamID: 3, Cost: 90, PredictedPoints: 5.5},
	}

	pool, err := BuildPool(rows, []string{"haaland", "SALAH"})
	require.NoError(t, err)

	locked := pool.Locked()
	require.Len(t, locked, 2)
	assert.Equal(t, 1, locked[0].ID)
	assert.Equal(t, 2, locked[1].ID)

	c, _ := pool.ByID(3)
	assert.False(t, c.Locked)
}

func TestBuildPool_UnknownLock(t *testing.T) {
	rows := []Candidate{
		{ID: 1, Name: "Haaland", Position: Forward, TeamID: 1, Cost: 151, PredictedPoints: 8.9},
	}

	_, err := BuildPool(rows, []string{"Ronaldo"})
	var unknown *UnknownLockError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Ronaldo", unknown.Name)
}

func TestBuildPool_AmbiguousLock(t *testing.T) {
	rows := []Candidate{
		{ID: 1, Name: "James", Position: Defender, TeamID: 1, Cost: 55, PredictedPoints: 4.0},
		{ID: 2, Name: "James", Position: Midfielder, TeamID: 2, Cost: 62, PredictedPoints: 4.4},
	}

	_, err := BuildPool(rows, []string{"James"})
	var ambiguous *AmbiguousLockError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "James", ambiguous.Name)
	assert.Equal(t, []int{1, 2}, ambiguous.MatchIDs)
}

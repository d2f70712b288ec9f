package optimizer

import (
	"fmt"
	"math"
	"sort"
)

// Formation is a legal (DEF, MID, FWD) outfield split. Ten outfield players
// plus one goalkeeper make a lineup.
type Formation struct {
	DEF int `json:"def"`
	MID int `json:"mid"`
	FWD int `json:"fwd"`
}

func (f Formation) String() string {
	return fmt.Sprintf("%d-%d-%d", f.DEF, f.MID, f.FWD)
}

// Formations enumerates every legal split: DEF in [3,5], MID in [2,5],
// FWD in [1,3], summing to 10. Fixed order so score ties resolve the same
// way on every run.
var Formations = []Formation{
	{3, 4, 3},
	{3, 5, 2},
	{4, 3, 3},
	{4, 4, 2},
	{4, 5, 1},
	{5, 2, 3},
	{5, 3, 2},
	{5, 4, 1},
}

// ChooseLineup picks the best-scoring legal 11 from a 15-player squad and
// designates its captain. The squad satisfies exact position totals, so per
// formation the optimum is simply the top scorers of each position group;
// the best formation wins overall.
func ChooseLineup(squad []Candidate) (*LineupResult, error) {
	byPos := make(map[Position][]Candidate)
	for _, c := range squad {
		byPos[c.Position] = append(byPos[c.Position], c)
	}
	for _, pos := range Positions {
		if len(byPos[pos]) != SquadQuota[pos] {
			return nil, fmt.Errorf("%w: squad has %d %s, want %d",
				ErrSquadInvariant, len(byPos[pos]), pos, SquadQuota[pos])
		}
		group := byPos[pos]
		sort.Slice(group, func(i, j int) bool {
			if group[i].PredictedPoints != group[j].PredictedPoints {
				return group[i].PredictedPoints > group[j].PredictedPoints
			}
			return group[i].ID < group[j].ID
		})
	}

	gk := byPos[Goalkeeper][0]

	defPrefix := prefixSums(byPos[Defender])
	midPrefix := prefixSums(byPos[Midfielder])
	fwdPrefix := prefixSums(byPos[Forward])

	// Scores may be negative, so the sentinel must sit below any real sum.
	var best Formation
	bestSum := math.Inf(-1)
	for _, f := range Formations {
		sum := gk.PredictedPoints + defPrefix[f.DEF] + midPrefix[f.MID] + fwdPrefix[f.FWD]
		if sum > bestSum {
			bestSum = sum
			best = f
		}
	}

	lineup := make([]Candidate, 0, LineupSize)
	lineup = append(lineup, gk)
	lineup = append(lineup, byPos[Defender][:best.DEF]...)
	lineup = append(lineup, byPos[Midfielder][:best.MID]...)
	lineup = append(lineup, byPos[Forward][:best.FWD]...)

	captain := lineup[0]
	for _, c := range lineup[1:] {
		if c.PredictedPoints > captain.PredictedPoints ||
			(c.PredictedPoints == captain.PredictedPoints && c.ID < captain.ID) {
			captain = c
		}
	}

	ids := make([]int, len(lineup))
	for i, c := range lineup {
		ids[i] = c.ID
	}
	sort.Ints(ids)

	return &LineupResult{
		XIIDs:          ids,
		CaptainID:      captain.ID,
		Formation:      best,
		TotalPoints:    bestSum,
		ExpectedPoints: bestSum + captain.PredictedPoints,
	}, nil
}

func prefixSums(group []Candidate) []float64 {
	sums := make([]float64, len(group)+1)
	for i, c := range group {
		sums[i+1] = sums[i] + c.PredictedPoints
	}
	return sums
}

package optimizer

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultNodeBudget = int64(5_000_000)
	defaultTimeBudget = 2 * time.Second

	// scoreEpsilon separates genuinely better scores from float noise;
	// anything closer is treated as a tie and settled by id order.
	scoreEpsilon = 1e-9

	clockCheckMask   = 1<<10 - 1
	progressInterval = int64(100_000)
)

// SolveOptions bound the squad search. Zero values fall back to defaults.
type SolveOptions struct {
	Budget     int
	TeamCap    int
	NodeBudget int64
	TimeBudget time.Duration
	Progress   func(ProgressUpdate)
	Logger     *logrus.Entry
}

func (o SolveOptions) withDefaults() SolveOptions {
	if o.Budget <= 0 {
		o.Budget = BudgetTenths
	}
	if o.TeamCap <= 0 {
		o.TeamCap = TeamCap
	}
	if o.NodeBudget <= 0 {
		o.NodeBudget = defaultNodeBudget
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = defaultTimeBudget
	}
	if o.Logger == nil {
		o.Logger = logrus.WithField("component", "squad_selector")
	}
	return o
}

// SelectSquad solves the 15-player selection exactly: maximize total
// predicted points subject to the position quotas, the per-team cap, the
// budget, and forced inclusion of every locked candidate. Among equal-score
// optima the squad with the lexicographically smallest sorted id set wins.
//
// The search carries a node and wall-clock budget; when either trips, the
// best solution found so far is returned with TimeLimited set. Context
// cancellation aborts with the context's error and no partial result.
func SelectSquad(ctx context.Context, pool *Pool, opts SolveOptions) (*SquadResult, error) {
	return selectSquad(ctx, pool, opts, nil)
}

// transferConstraint restricts solutions to squads whose symmetric
// difference with an owned 15 has an exact size.
type transferConstraint struct {
	owned  map[int]bool
	target int // number of players bought (= players sold)
}

type positionGroup struct {
	pos   Position
	need  int
	cands []Candidate
	// minCost[i][r] is the cheapest total cost of r picks from cands[i:];
	// maxPts[i][r] the highest total score. Both ignore the team cap, which
	// keeps them admissible for pruning.
	minCost [][]int
	maxPts  [][]float64
}

type squadSearch struct {
	groups  []positionGroup
	budget  int
	teamCap int

	// suffix aggregates over groups after index g
	minCostAfter []int
	maxPtsAfter  []float64
	needAfter    []int

	transfer *transferConstraint

	teamCount map[int]int
	chosen    []Candidate
	cost      int
	points    float64
	added     int

	best       []Candidate
	bestCost   int
	bestPoints float64
	haveBest   bool

	ctx         context.Context
	ctxErr      error
	deadline    time.Time
	nodeBudget  int64
	nodes       int64
	timeLimited bool
	start       time.Time
	progress    func(ProgressUpdate)
}

func selectSquad(ctx context.Context, pool *Pool, opts SolveOptions, transfer *transferConstraint) (*SquadResult, error) {
	opts = opts.withDefaults()
	log := opts.Logger

	locked := pool.Locked()
	if err := validateLocks(locked, opts.TeamCap); err != nil {
		return nil, err
	}

	search := &squadSearch{
		budget:     opts.Budget,
		teamCap:    opts.TeamCap,
		transfer:   transfer,
		teamCount:  make(map[int]int),
		chosen:     make([]Candidate, 0, SquadSize),
		ctx:        ctx,
		deadline:   time.Now().Add(opts.TimeBudget),
		nodeBudget: opts.NodeBudget,
		start:      time.Now(),
		progress:   opts.Progress,
	}
	if deadline, ok := ctx.Deadline(); ok && deadline.Before(search.deadline) {
		search.deadline = deadline
	}

	// Seed the search state with the forced inclusions.
	for _, c := range locked {
		search.chosen = append(search.chosen, c)
		search.cost += c.Cost
		search.points += c.PredictedPoints
		search.teamCount[c.TeamID]++
		if transfer != nil && !transfer.owned[c.ID] {
			search.added++
		}
	}

	if err := search.buildGroups(pool, locked); err != nil {
		return nil, err
	}

	// Cheapest possible completion already over budget: no search needed.
	if search.cost+search.minCostAfter[0] > search.budget {
		return nil, infeasible(ReasonBudget,
			"locked players cost %d and the cheapest legal completion needs %d more, budget is %d",
			search.cost, search.minCostAfter[0], search.budget)
	}

	log.WithFields(logrus.Fields{
		"pool_size":   pool.Size(),
		"locked":      len(locked),
		"budget":      opts.Budget,
		"node_budget": opts.NodeBudget,
		"time_budget": opts.TimeBudget,
	}).Debug("Starting squad search")

	search.solve(0, 0, search.groups[0].need)
	if search.ctxErr != nil {
		return nil, search.ctxErr
	}

	if !search.haveBest {
		if search.timeLimited {
			return nil, infeasible(ReasonTimeLimit,
				"no feasible squad found within %d nodes", search.nodes)
		}
		if transfer != nil {
			return nil, infeasible(ReasonTransferCount,
				"no legal squad differs from the current one by exactly %d transfers", transfer.target)
		}
		return nil, infeasible(ReasonBudget,
			"no squad satisfies the budget of %d with the team cap of %d", opts.Budget, opts.TeamCap)
	}

	members := make([]Candidate, len(search.best))
	copy(members, search.best)
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	log.WithFields(logrus.Fields{
		"nodes_explored": search.nodes,
		"total_points":   search.bestPoints,
		"total_cost":     search.bestCost,
		"time_limited":   search.timeLimited,
		"elapsed":        time.Since(search.start),
	}).Info("Squad search completed")

	return &SquadResult{
		Members:       members,
		TotalCost:     search.bestCost,
		TotalPoints:   search.bestPoints,
		TimeLimited:   search.timeLimited,
		NodesExplored: search.nodes,
	}, nil
}

// validateLocks rejects lock sets that already violate a constraint class,
// each with its own reason so the caller can render a specific message.
func validateLocks(locked []Candidate, teamCap int) error {
	if len(locked) > SquadSize {
		return infeasible(ReasonLockCount, "%d locked players exceed the squad size of %d", len(locked), SquadSize)
	}

	posCount := make(map[Position]int)
	teamCount := make(map[int]int)
	for _, c := range locked {
		posCount[c.Position]++
		teamCount[c.TeamID]++
	}
	for _, pos := range Positions {
		if posCount[pos] > SquadQuota[pos] {
			return infeasible(ReasonLockPosition,
				"%d locked %s players exceed the quota of %d", posCount[pos], pos, SquadQuota[pos])
		}
	}
	for teamID, n := range teamCount {
		if n > teamCap {
			return infeasible(ReasonLockTeamCap,
				"%d locked players from team %d exceed the cap of %d", n, teamID, teamCap)
		}
	}
	return nil
}

func (s *squadSearch) buildGroups(pool *Pool, locked []Candidate) error {
	lockedPerPos := make(map[Position]int)
	for _, c := range locked {
		lockedPerPos[c.Position]++
	}

	s.groups = make([]positionGroup, 0, len(Positions))
	for _, pos := range Positions {
		need := SquadQuota[pos] - lockedPerPos[pos]
		var cands []Candidate
		for _, c := range pool.Candidates() {
			if c.Position == pos && !c.Locked {
				cands = append(cands, c)
			}
		}
		if len(cands) < need {
			return infeasible(ReasonPoolShortage,
				"need %d more %s players but only %d are available", need, pos, len(cands))
		}

		// High scorers first so the first complete squad is already strong;
		// id ascending within equal scores keeps the search deterministic.
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].PredictedPoints != cands[j].PredictedPoints {
				return cands[i].PredictedPoints > cands[j].PredictedPoints
			}
			return cands[i].ID < cands[j].ID
		})

		g := positionGroup{pos: pos, need: need, cands: cands}
		g.computeBounds()
		s.groups = append(s.groups, g)
	}

	n := len(s.groups)
	s.minCostAfter = make([]int, n+1)
	s.maxPtsAfter = make([]float64, n+1)
	s.needAfter = make([]int, n+1)
	for g := n - 1; g >= 0; g-- {
		s.minCostAfter[g] = s.minCostAfter[g+1] + s.groups[g].minCost[0][s.groups[g].need]
		s.maxPtsAfter[g] = s.maxPtsAfter[g+1] + s.groups[g].maxPts[0][s.groups[g].need]
		s.needAfter[g] = s.needAfter[g+1] + s.groups[g].need
	}
	return nil
}

const unreachableCost = 1 << 30

func (g *positionGroup) computeBounds() {
	n := len(g.cands)
	g.minCost = make([][]int, n+1)
	g.maxPts = make([][]float64, n+1)
	for i := n; i >= 0; i-- {
		g.minCost[i] = make([]int, g.need+1)
		g.maxPts[i] = make([]float64, g.need+1)
		for r := 1; r <= g.need; r++ {
			if i == n {
				g.minCost[i][r] = unreachableCost
				continue
			}
			g.minCost[i][r] = g.minCost[i+1][r]
			g.maxPts[i][r] = g.maxPts[i+1][r]
			if g.minCost[i+1][r-1] != unreachableCost {
				if c := g.cands[i].Cost + g.minCost[i+1][r-1]; c < g.minCost[i][r] {
					g.minCost[i][r] = c
				}
			}
			if p := g.cands[i].PredictedPoints + g.maxPts[i+1][r-1]; p > g.maxPts[i][r] {
				g.maxPts[i][r] = p
			}
		}
	}
}

// solve explores candidate i of group g with rem slots still to fill there.
// It returns false when the search must stop (budget exhausted or context
// cancelled).
func (s *squadSearch) solve(g, i, rem int) bool {
	s.nodes++
	if s.nodes > s.nodeBudget {
		s.timeLimited = true
		return false
	}
	if s.nodes&clockCheckMask == 1 {
		if err := s.ctx.Err(); err != nil {
			s.ctxErr = err
			return false
		}
		if time.Now().After(s.deadline) {
			s.timeLimited = true
			return false
		}
	}
	if s.progress != nil && s.nodes%progressInterval == 0 {
		s.progress(ProgressUpdate{
			Phase:         "squad_search",
			NodesExplored: s.nodes,
			BestScore:     s.bestPoints,
			ElapsedMs:     time.Since(s.start).Milliseconds(),
		})
	}

	if rem == 0 {
		g++
		if g == len(s.groups) {
			s.complete()
			return true
		}
		return s.solve(g, 0, s.groups[g].need)
	}

	group := &s.groups[g]
	if len(group.cands)-i < rem {
		return true
	}

	// Budget lower bound: cheapest completion of this group plus the
	// cheapest full quotas of the remaining groups.
	if s.cost+group.minCost[i][rem]+s.minCostAfter[g+1] > s.budget {
		return true
	}

	// Score upper bound: best completion ignoring budget and team cap.
	// Equal bounds keep exploring so equal-score optima can still win the
	// id tie-break.
	if s.haveBest {
		bound := s.points + group.maxPts[i][rem] + s.maxPtsAfter[g+1]
		if bound < s.bestPoints-scoreEpsilon {
			return true
		}
	}

	if s.transfer != nil {
		if s.added > s.transfer.target {
			return true
		}
		// Even buying every remaining pick cannot reach the target.
		if s.added+rem+s.needAfter[g+1] < s.transfer.target {
			return true
		}
	}

	c := group.cands[i]

	// Include branch first: with score-descending order the greedy-leaning
	// path produces a strong incumbent early.
	if s.teamCount[c.TeamID] < s.teamCap && s.cost+c.Cost <= s.budget {
		buying := s.transfer != nil && !s.transfer.owned[c.ID]
		if !buying || s.added < s.transfer.target {
			s.chosen = append(s.chosen, c)
			s.cost += c.Cost
			s.points += c.PredictedPoints
			s.teamCount[c.TeamID]++
			if buying {
				s.added++
			}

			ok := s.solve(g, i+1, rem-1)

			if buying {
				s.added--
			}
			s.teamCount[c.TeamID]--
			s.points -= c.PredictedPoints
			s.cost -= c.Cost
			s.chosen = s.chosen[:len(s.chosen)-1]

			if !ok {
				return false
			}
		}
	}

	return s.solve(g, i+1, rem)
}

func (s *squadSearch) complete() {
	if s.transfer != nil && s.added != s.transfer.target {
		return
	}

	switch {
	case !s.haveBest || s.points > s.bestPoints+scoreEpsilon:
		// strictly better
	case s.points >= s.bestPoints-scoreEpsilon && smallerIDSet(s.chosen, s.best):
		// equal score, canonically smaller ids
	default:
		return
	}

	s.best = append(s.best[:0], s.chosen...)
	s.bestCost = s.cost
	s.bestPoints = s.points
	s.haveBest = true
}

// smallerIDSet compares two member sets by their ascending id sequences.
func smallerIDSet(a, b []Candidate) bool {
	ai := sortedIDs(a)
	bi := sortedIDs(b)
	for k := range ai {
		if ai[k] != bi[k] {
			return ai[k] < bi[k]
		}
	}
	return false
}

func sortedIDs(members []Candidate) []int {
	ids := make([]int, len(members))
	for i, c := range members {
		ids[i] = c.ID
	}
	sort.Ints(ids)
	return ids
}

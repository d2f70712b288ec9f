package optimizer

import (
	"fmt"
	"sort"
	"strings"
)

// Pool is the immutable candidate list one optimization run operates on.
// Candidates are held in ascending id order, which later stages rely on for
// deterministic tie-breaking.
type Pool struct {
	candidates []Candidate
	byID       map[int]int
}

// BuildPool normalizes raw prediction rows into a pool and resolves the
// caller's lock names into forced-inclusion flags. Lock matching is a
// case-insensitive exact match on the full name; a name matching zero or
// several candidates fails the whole request.
func BuildPool(rows []Candidate, lockNames []string) (*Pool, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyPool
	}

	candidates := make([]Candidate, len(rows))
	copy(candidates, rows)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})

	byID := make(map[int]int, len(candidates))
	for i, c := range candidates {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate candidate id %d", c.ID)
		}
		if !c.Position.Valid() {
			return nil, fmt.Errorf("candidate %d has unknown position %q", c.ID, c.Position)
		}
		if c.Cost <= 0 {
			return nil, fmt.Errorf("candidate %d has non-positive cost %d", c.ID, c.Cost)
		}
		byID[c.ID] = i
	}

	for _, name := range lockNames {
		var matches []int
		for i, c := range candidates {
			if strings.EqualFold(c.Name, name) {
				matches = append(matches, i)
			}
		}
		switch len(matches) {
		case 0:
			return nil, &UnknownLockError{Name: name}
		case 1:
			candidates[matches[0]].Locked = true
		default:
			ids := make([]int, len(matches))
			for i, idx := range matches {
				ids[i] = candidates[idx].ID
			}
			return nil, &AmbiguousLockError{Name: name, MatchIDs: ids}
		}
	}

	return &Pool{candidates: candidates, byID: byID}, nil
}

// Candidates returns the pool contents in ascending id order. The slice is
// shared; callers must treat it as read-only.
func (p *Pool) Candidates() []Candidate {
	return p.candidates
}

// Size returns the number of candidates in the pool.
func (p *Pool) Size() int {
	return len(p.candidates)
}

// ByID looks up a candidate by id.
func (p *Pool) ByID(id int) (Candidate, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Candidate{}, false
	}
	return p.candidates[i], true
}

// Locked returns the forced-inclusion candidates in ascending id order.
func (p *Pool) Locked() []Candidate {
	var locked []Candidate
	for _, c := range p.candidates {
		if c.Locked {
			locked = append(locked, c)
		}
	}
	return locked
}

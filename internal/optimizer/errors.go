package optimizer

import (
	"errors"
	"fmt"
)

// ErrEmptyPool is returned when a request carries no candidates.
var ErrEmptyPool = errors.New("candidate pool is empty")

// ErrSquadInvariant indicates a squad that passed selection but does not
// admit a legal lineup. A legal 2/5/5/3 squad always does, so observing this
// is an internal-consistency fault, not a caller error.
var ErrSquadInvariant = errors.New("squad does not admit a legal lineup")

// UnknownLockError is returned when a requested lock name matches no
// candidate. The whole request fails rather than silently dropping the lock.
type UnknownLockError struct {
	Name string
}

func (e *UnknownLockError) Error() string {
	return fmt.Sprintf("unknown locked player: %s", e.Name)
}

// AmbiguousLockError is returned when a lock name matches more than one
// candidate.
type AmbiguousLockError struct {
	Name     string
	MatchIDs []int
}

func (e *AmbiguousLockError) Error() string {
	return fmt.Sprintf("ambiguous locked player %q matches candidates %v", e.Name, e.MatchIDs)
}

// InfeasibilityReason identifies which constraint class made squad selection
// impossible.
type InfeasibilityReason string

const (
	ReasonLockCount      InfeasibilityReason = "lock_count_exceeded"
	ReasonLockPosition   InfeasibilityReason = "lock_position_quota"
	ReasonLockTeamCap    InfeasibilityReason = "lock_team_cap"
	ReasonPoolShortage   InfeasibilityReason = "pool_position_shortage"
	ReasonBudget         InfeasibilityReason = "budget_infeasible"
	ReasonTransferCount  InfeasibilityReason = "transfer_count_unreachable"
	ReasonTimeLimit      InfeasibilityReason = "infeasible_within_time"
)

// InfeasibleError reports the specific violated constraint class; callers
// never see a generic "optimization failed".
type InfeasibleError struct {
	Reason InfeasibilityReason
	Detail string
}

func (e *InfeasibleError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func infeasible(reason InfeasibilityReason, format string, args ...interface{}) *InfeasibleError {
	return &InfeasibleError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

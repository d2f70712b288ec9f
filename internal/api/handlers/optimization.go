package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fplpredict/optimizer-service/internal/optimizer"
	"github.com/fplpredict/optimizer-service/internal/scoring"
	"github.com/fplpredict/optimizer-service/internal/websocket"
	"github.com/fplpredict/optimizer-service/pkg/cache"
	"github.com/fplpredict/optimizer-service/pkg/config"
)

// formGameweeks is the form-scoring window applied when a row arrives with a
// gameweek history instead of a ready-made prediction.
const formGameweeks = 4

// OptimizationHandler handles pick-team endpoints.
type OptimizationHandler struct {
	cache  *cache.ResultCache
	hub    *websocket.Hub
	config *config.Config
	logger *logrus.Logger
	scorer scoring.Scorer
}

// NewOptimizationHandler creates a new optimization handler. The cache and
// hub may be nil; caching and progress streaming are then skipped.
func NewOptimizationHandler(
	resultCache *cache.ResultCache,
	hub *websocket.Hub,
	cfg *config.Config,
	logger *logrus.Logger,
) *OptimizationHandler {
	return &OptimizationHandler{
		cache:  resultCache,
		hub:    hub,
		config: cfg,
		logger: logger,
		scorer: scoring.NewFormScorer(formGameweeks),
	}
}

// PickTeam handles POST /api/v1/pick-team.
func (h *OptimizationHandler) PickTeam(c *gin.Context) {
	var req PickTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	optimizationID := uuid.New().String()
	log := h.logger.WithFields(logrus.Fields{
		"optimization_id": optimizationID,
		"pool_size":       len(req.Players),
		"locked_names":    len(req.Locked),
	})

	if len(req.Players) > h.config.MaxPoolSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Candidate pool exceeds the limit of %d players", h.config.MaxPoolSize),
			Code:  "POOL_TOO_LARGE",
		})
		return
	}

	cacheKey := h.lookupCache(c, "pickteam", req, log)
	if cacheKey == "" {
		return // cache hit already answered
	}

	pool, ok := h.buildPool(c, req, log)
	if !ok {
		return
	}

	start := time.Now()
	selection, err := optimizer.PickTeam(c.Request.Context(), pool, h.solveOptions(req, optimizationID, log))
	if err != nil {
		h.respondOptimizerError(c, err, log)
		return
	}

	response := h.toResponse(selection, optimizationID)
	h.storeCache(c, cacheKey, response, log)

	log.WithFields(logrus.Fields{
		"total_cost":      selection.TotalCost,
		"expected_points": selection.ExpectedPoints,
		"formation":       selection.Formation,
		"time_limited":    selection.TimeLimited,
		"execution_time":  time.Since(start),
	}).Info("Pick-team completed")

	c.JSON(http.StatusOK, response)
}

// Transfers handles POST /api/v1/transfers.
func (h *OptimizationHandler) Transfers(c *gin.Context) {
	var req TransfersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	optimizationID := uuid.New().String()
	log := h.logger.WithFields(logrus.Fields{
		"optimization_id": optimizationID,
		"pool_size":       len(req.Players),
		"transfers":       req.Transfers,
	})

	if len(req.Players) > h.config.MaxPoolSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Candidate pool exceeds the limit of %d players", h.config.MaxPoolSize),
			Code:  "POOL_TOO_LARGE",
		})
		return
	}

	pool, ok := h.buildPool(c, req.PickTeamRequest, log)
	if !ok {
		return
	}

	start := time.Now()
	selection, err := optimizer.PickTeamWithTransfers(
		c.Request.Context(), pool, req.CurrentSquadIDs, req.Transfers,
		h.solveOptions(req.PickTeamRequest, optimizationID, log))
	if err != nil {
		h.respondOptimizerError(c, err, log)
		return
	}

	log.WithFields(logrus.Fields{
		"expected_points": selection.ExpectedPoints,
		"execution_time":  time.Since(start),
	}).Info("Transfer optimization completed")

	c.JSON(http.StatusOK, h.toResponse(selection, optimizationID))
}

// Validate handles POST /api/v1/pick-team/validate: it resolves locks and
// checks pool shape without running the solver.
func (h *OptimizationHandler) Validate(c *gin.Context) {
	var req PickTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	log := h.logger.WithField("pool_size", len(req.Players))
	pool, ok := h.buildPool(c, req, log)
	if !ok {
		return
	}

	counts := make(map[string]int)
	for _, cand := range pool.Candidates() {
		counts[string(cand.Position)]++
	}
	for _, pos := range optimizer.Positions {
		if counts[string(pos)] < optimizer.SquadQuota[pos] {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: fmt.Sprintf("Pool has %d %s players, the squad needs %d",
					counts[string(pos)], pos, optimizer.SquadQuota[pos]),
				Code: string(optimizer.ReasonPoolShortage),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Pick-team request is valid",
		"player_count":    pool.Size(),
		"locked_count":    len(pool.Locked()),
		"position_counts": counts,
	})
}

func (h *OptimizationHandler) buildPool(c *gin.Context, req PickTeamRequest, log *logrus.Entry) (*optimizer.Pool, bool) {
	rows := make([]optimizer.Candidate, len(req.Players))
	scores := make([]float64, len(req.Players))
	for i, p := range req.Players {
		points := p.PredictedPoints
		if points == 0 && len(p.RecentPoints) > 0 {
			points = h.scorer.Score(p.RecentPoints)
		}
		rows[i] = optimizer.Candidate{
			ID:              p.ID,
			Name:            p.Name,
			Position:        optimizer.Position(p.Position),
			TeamID:          p.TeamID,
			Cost:            p.Cost,
			PredictedPoints: points,
		}
		scores[i] = points
	}

	mean, stddev := scoring.PoolStats(scores)
	log.WithFields(logrus.Fields{
		"score_mean":   mean,
		"score_stddev": stddev,
	}).Debug("Candidate pool scored")

	pool, err := optimizer.BuildPool(rows, req.Locked)
	if err != nil {
		h.respondOptimizerError(c, err, log)
		return nil, false
	}
	return pool, true
}

func (h *OptimizationHandler) solveOptions(req PickTeamRequest, optimizationID string, log *logrus.Entry) optimizer.SolveOptions {
	opts := optimizer.SolveOptions{
		NodeBudget: h.config.SolverNodeBudget,
		TimeBudget: h.config.SolverTimeBudget(),
		Logger:     log,
	}
	if req.NodeBudget > 0 && req.NodeBudget < opts.NodeBudget {
		opts.NodeBudget = req.NodeBudget
	}
	if req.TimeBudgetMs > 0 {
		if d := time.Duration(req.TimeBudgetMs) * time.Millisecond; d < opts.TimeBudget {
			opts.TimeBudget = d
		}
	}
	if h.hub != nil {
		opts.Progress = func(u optimizer.ProgressUpdate) {
			h.hub.BroadcastToRequest(optimizationID, u)
		}
	}
	return opts
}

func (h *OptimizationHandler) toResponse(sel *optimizer.TeamSelection, optimizationID string) PickTeamResponse {
	return PickTeamResponse{
		Squad:          sel.Squad,
		XIIDs:          sel.XIIDs,
		CaptainID:      sel.CaptainID,
		Formation:      sel.Formation,
		TotalCost:      sel.TotalCost,
		ExpectedPoints: sel.ExpectedPoints,
		TimeLimited:    sel.TimeLimited,
		OptimizationID: optimizationID,
	}
}

// lookupCache answers from cache when possible. It returns the computed key,
// or "" when the response has already been written.
func (h *OptimizationHandler) lookupCache(c *gin.Context, prefix string, req interface{}, log *logrus.Entry) string {
	key, err := cache.Key(prefix, req)
	if err != nil {
		log.WithError(err).Warn("Failed to derive cache key")
		return "uncacheable"
	}
	if h.cache == nil {
		return key
	}

	var cached PickTeamResponse
	if err := h.cache.Get(c.Request.Context(), key, &cached); err == nil {
		log.WithField("cache_key", key).Info("Returning cached pick-team result")
		c.JSON(http.StatusOK, cached)
		return ""
	}
	return key
}

func (h *OptimizationHandler) storeCache(c *gin.Context, key string, response PickTeamResponse, log *logrus.Entry) {
	if h.cache == nil || key == "uncacheable" {
		return
	}
	if err := h.cache.Set(c.Request.Context(), key, response, h.config.CacheTTL()); err != nil {
		log.WithError(err).Warn("Failed to cache pick-team result")
	}
}

// respondOptimizerError maps the error taxonomy onto HTTP responses so the
// caller can render a specific message per failure class.
func (h *OptimizationHandler) respondOptimizerError(c *gin.Context, err error, log *logrus.Entry) {
	var unknown *optimizer.UnknownLockError
	if errors.As(err, &unknown) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "UNKNOWN_LOCKED_PLAYER",
			Details: map[string]string{
				"player_name": unknown.Name,
			},
		})
		return
	}

	var ambiguous *optimizer.AmbiguousLockError
	if errors.As(err, &ambiguous) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  "AMBIGUOUS_LOCKED_PLAYER",
			Details: map[string]string{
				"player_name": ambiguous.Name,
				"match_ids":   fmt.Sprint(ambiguous.MatchIDs),
			},
		})
		return
	}

	var inf *optimizer.InfeasibleError
	if errors.As(err, &inf) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  string(inf.Reason),
		})
		return
	}

	if errors.Is(err, optimizer.ErrSquadInvariant) {
		// Should never happen for a legal squad; fatal to the request.
		log.WithError(err).Error("Squad invariant violated")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal consistency fault",
			Code:  "SQUAD_INVARIANT_VIOLATION",
		})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error: "Request deadline exceeded",
			Code:  "DEADLINE_EXCEEDED",
		})
		return
	}

	log.WithError(err).Error("Pick-team failed")
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: err.Error(),
		Code:  "INVALID_REQUEST",
	})
}

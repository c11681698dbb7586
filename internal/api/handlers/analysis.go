package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/consilium-ai/consilium-go/internal/models"
)

// AnalysisRunner runs one consensus analysis. Satisfied by services.Engine.
type AnalysisRunner interface {
	RunAnalysis(ctx context.Context, targetAssets []string) *models.ConsensusDecision
}

// ConsensusStore is the decision history the handler reads and writes. May
// be nil when the database is disabled.
type ConsensusStore interface {
	Insert(ctx context.Context, decision *models.ConsensusDecision) error
	Latest(ctx context.Context) (*models.ConsensusDecision, error)
	ListRecent(ctx context.Context, limit int) ([]*models.ConsensusDecision, error)
}

// DecisionCache holds the latest decision per target-asset set. May be nil
// when Redis is disabled.
type DecisionCache interface {
	Get(ctx context.Context, targetAssets []string) (*models.ConsensusDecision, bool)
	Set(ctx context.Context, targetAssets []string, decision *models.ConsensusDecision) error
}

// Notifier broadcasts completed decisions.
type Notifier interface {
	NotifyConsensus(ctx context.Context, decision *models.ConsensusDecision) error
}

// AnalysisHandler exposes the consensus engine over HTTP.
type AnalysisHandler struct {
	runner   AnalysisRunner
	store    ConsensusStore
	cache    DecisionCache
	notifier Notifier
	logger   *logrus.Logger
}

func NewAnalysisHandler(runner AnalysisRunner, store ConsensusStore, cache DecisionCache, notifier Notifier, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		runner:   runner,
		store:    store,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

type runAnalysisRequest struct {
	TargetAssets []string `json:"target_assets"`
}

// RunAnalysis executes a full analysis run and returns the consensus. The
// run itself never fails; only persistence and notification are best-effort
// side effects.
func (h *AnalysisHandler) RunAnalysis(c *gin.Context) {
	var req runAnalysisRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	ctx := c.Request.Context()
	decision := h.runner.RunAnalysis(ctx, req.TargetAssets)

	if h.store != nil {
		if err := h.store.Insert(ctx, decision); err != nil {
			h.logger.WithError(err).Warn("Failed to persist consensus decision")
		}
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, req.TargetAssets, decision); err != nil {
			h.logger.WithError(err).Warn("Failed to cache consensus decision")
		}
	}
	if h.notifier != nil {
		if err := h.notifier.NotifyConsensus(ctx, decision); err != nil {
			h.logger.WithError(err).Warn("Failed to send consensus notification")
		}
	}

	c.JSON(http.StatusOK, decision)
}

// LatestAnalysis returns the most recent decision for the requested asset
// set, preferring the cache over the history.
func (h *AnalysisHandler) LatestAnalysis(c *gin.Context) {
	ctx := c.Request.Context()
	targetAssets := c.QueryArray("asset")

	if h.cache != nil {
		if decision, ok := h.cache.Get(ctx, targetAssets); ok {
			c.JSON(http.StatusOK, decision)
			return
		}
	}

	if h.store != nil {
		decision, err := h.store.Latest(ctx)
		if err == nil {
			c.JSON(http.StatusOK, decision)
			return
		}
		h.logger.WithError(err).Debug("No consensus decision in history")
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "No consensus decision available"})
}

// AnalysisHistory returns recent decisions, newest first.
func (h *AnalysisHandler) AnalysisHistory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Decision history is not enabled"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	decisions, err := h.store.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list consensus decisions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load decision history"})
		return
	}
	if decisions == nil {
		decisions = []*models.ConsensusDecision{}
	}

	c.JSON(http.StatusOK, gin.H{"decisions": decisions, "count": len(decisions)})
}

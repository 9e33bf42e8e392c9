package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/partmatch/backend/internal/domain"
	"github.com/partmatch/backend/internal/usecase"
)

// maxBatchSize caps one batch request; larger batches should be chunked by
// the caller.
const maxBatchSize = 500

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service  *usecase.MatchingService
	batch    *usecase.BatchMatcher
	cache    domain.CacheRepository
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. A zero cacheTTL disables response
// caching.
func NewHandler(
	service *usecase.MatchingService,
	batch *usecase.BatchMatcher,
	cache domain.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:  service,
		batch:    batch,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "partmatch-backend",
		"version": "1.0.0",
	})
}

type matchRequest struct {
	ProductName string               `json:"productName" binding:"required"`
	Category    string               `json:"category" binding:"required"`
	Properties  []domain.Property    `json:"properties"`
	Options     usecase.MatchOptions `json:"options"`
}

type matchResponse struct {
	Matches []domain.InventoryMatch `json:"matches"`
	Flags   []domain.ReviewFlag     `json:"flags"`
}

// MatchProduct matches a single product mention against the catalog and
// returns ranked matches plus review flags.
func (h *Handler) MatchProduct(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mention := domain.ProductMention{
		ProductName: req.ProductName,
		Category:    req.Category,
		Properties:  req.Properties,
	}

	// Resolve option defaults up front so requests that spell out the
	// defaults and requests that omit them share a cache key.
	opts := h.service.EffectiveOptions(req.Options)

	cacheKey := h.cacheKey(&mention, opts)
	if h.cacheEnabled() {
		if cached, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			if resp, ok := cached.(matchResponse); ok {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	matches, flags, err := h.service.MatchAndFlag(c.Request.Context(), &mention, opts)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := matchResponse{Matches: matches, Flags: flags}
	if h.cacheEnabled() {
		if err := h.cache.Set(c.Request.Context(), cacheKey, resp, h.cacheTTL); err != nil {
			h.logger.Warn("caching match response failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, resp)
}

type batchRequest struct {
	Mentions []domain.ProductMention `json:"mentions" binding:"required"`
	Options  usecase.MatchOptions    `json:"options"`
}

// MatchBatch matches many mentions concurrently. Per-mention catalog
// failures are reported inline on the affected items; a configuration error
// fails the whole request.
func (h *Handler) MatchBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Mentions) > maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("batch size %d exceeds limit %d", len(req.Mentions), maxBatchSize),
		})
		return
	}

	items, err := h.batch.MatchBatch(c.Request.Context(), req.Mentions, req.Options)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ReloadHierarchies re-reads the hierarchy configuration without a restart.
func (h *Handler) ReloadHierarchies(c *gin.Context) {
	if err := h.service.ReloadHierarchies(c.Request.Context()); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidMention):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConfiguration):
		h.logger.Error("hierarchy configuration error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFilter):
		h.logger.Error("catalog query error", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("match request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) cacheEnabled() bool {
	return h.cache != nil && h.cacheTTL > 0
}

// cacheKey builds a deterministic key from the normalized mention and the
// resolved options. opts must already have its defaults applied.
func (h *Handler) cacheKey(mention *domain.ProductMention, opts usecase.MatchOptions) string {
	parts := []string{
		"match",
		usecase.Normalize(mention.Category),
		usecase.Normalize(mention.ProductName),
	}

	props := make([]string, 0, len(mention.Properties))
	for _, p := range mention.Properties {
		props = append(props, p.Name+"="+usecase.Normalize(p.Value))
	}
	sort.Strings(props)
	parts = append(parts, props...)
	minScore := 0.0
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}
	parts = append(parts, fmt.Sprintf("%d:%g", opts.MaxMatches, minScore))

	return strings.Join(parts, ":")
}

package handler

import (
	"net/http"

	"memo-registry/src/domain"
	"memo-registry/src/stats"
	"memo-registry/src/usecase"
	"memo-registry/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StatsHandler serves chart series and the dashboard summary
type StatsHandler struct {
	registry  *usecase.Registry
	validator *validator.CustomValidator
	logger    *logrus.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(registry *usecase.Registry, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		registry:  registry,
		validator: validator.NewCustomValidator(),
		logger:    logger,
	}
}

// DepartmentStats returns per-department counts of the filtered memos
func (h *StatsHandler) DepartmentStats(c *gin.Context) {
	criteria, ok := h.bindCriteria(c)
	if !ok {
		return
	}

	counts := h.registry.DepartmentStats(criteria)
	c.JSON(http.StatusOK, DepartmentStatsResponseDTO{
		ChartSeriesDTO: ChartSeriesDTO{Labels: counts.Labels(), Counts: counts.Values()},
		ByDepartment:   counts.Map(),
		Total:          counts.Total,
	})
}

// Timeline returns the line chart series for ?bucket=day|week|month|year
func (h *StatsHandler) Timeline(c *gin.Context) {
	kind, err := stats.ParseBucketKind(c.DefaultQuery("bucket", string(stats.BucketMonth)))
	if err != nil {
		respondError(c, err, "Invalid bucket")
		return
	}
	criteria, ok := h.bindCriteria(c)
	if !ok {
		return
	}

	tl, err := h.registry.Timeline(kind, criteria)
	if err != nil {
		h.logger.WithError(err).WithField("bucket", kind).Error("時系列の集計に失敗")
		respondError(c, err, "Failed to build timeline")
		return
	}
	c.JSON(http.StatusOK, TimelineResponseDTO{
		Bucket:         string(tl.Kind),
		ChartSeriesDTO: ChartSeriesDTO{Labels: tl.Labels, Counts: tl.Counts},
	})
}

// Dashboard returns the summary cards
func (h *StatsHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Dashboard())
}

func (h *StatsHandler) bindCriteria(c *gin.Context) (domain.FilterCriteria, bool) {
	var req MemoFilterDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return domain.FilterCriteria{}, false
	}
	if err := h.validator.Validate(&req); err != nil {
		respondValidation(c, err)
		return domain.FilterCriteria{}, false
	}
	return req.toCriteria(), true
}

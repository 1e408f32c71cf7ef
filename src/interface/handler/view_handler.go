package handler

import (
	"net/http"
	"strconv"

	"memo-registry/src/domain"
	"memo-registry/src/usecase"
	"memo-registry/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ViewHandler exposes the shared state of the main table
type ViewHandler struct {
	registry  *usecase.Registry
	validator *validator.CustomValidator
	logger    *logrus.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(registry *usecase.Registry, logger *logrus.Logger) *ViewHandler {
	return &ViewHandler{
		registry:  registry,
		validator: validator.NewCustomValidator(),
		logger:    logger,
	}
}

// GetView renders the current page
func (h *ViewHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, toViewResponse(h.registry.View()))
}

// SetFilter replaces the filter criteria of the view
func (h *ViewHandler) SetFilter(c *gin.Context) {
	var req FilterRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		respondValidation(c, err)
		return
	}

	c.JSON(http.StatusOK, toViewResponse(h.registry.SetCriteria(req.toCriteria())))
}

// ToggleSort clicks a column header
func (h *ViewHandler) ToggleSort(c *gin.Context) {
	field, err := domain.ParseSortField(c.Param("field"))
	if err != nil || field == domain.SortNone {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid sort field",
			Message: domain.ErrInvalidSortField.Error(),
		})
		return
	}

	page, err := h.registry.ToggleSort(field)
	if err != nil {
		respondError(c, err, "Failed to sort")
		return
	}
	h.logger.WithFields(logrus.Fields{
		"field":     page.Sort.Field,
		"direction": page.Sort.Direction,
	}).Debug("並び順を切り替えました")
	c.JSON(http.StatusOK, toViewResponse(page))
}

// SetPage moves the view to a page
func (h *ViewHandler) SetPage(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("page"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid page",
			Message: "page must be a positive integer",
		})
		return
	}
	c.JSON(http.StatusOK, toViewResponse(h.registry.SetPage(n)))
}

// ResetView clears the filter, sort and page
func (h *ViewHandler) ResetView(c *gin.Context) {
	c.JSON(http.StatusOK, toViewResponse(h.registry.ResetView()))
}

func toViewResponse(p usecase.ViewPage) MemoListResponseDTO {
	return toListResponse(p.Result, p.Criteria, p.Sort)
}

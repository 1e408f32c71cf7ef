package handler

import (
	"net/http"

	"memo-registry/src/usecase"
	"memo-registry/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DepartmentHandler handles the department list
type DepartmentHandler struct {
	registry  *usecase.Registry
	validator *validator.CustomValidator
	logger    *logrus.Logger
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(registry *usecase.Registry, logger *logrus.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		registry:  registry,
		validator: validator.NewCustomValidator(),
		logger:    logger,
	}
}

// ListDepartments returns the departments in insertion order
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, DepartmentsResponseDTO{Departments: h.registry.Departments()})
}

// AddDepartment appends a department. Duplicates answer 200 with added=false.
func (h *DepartmentHandler) AddDepartment(c *gin.Context) {
	var req DepartmentRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}
	req.Name = h.validator.NormalizeText(req.Name)
	if err := h.validator.Validate(&req); err != nil {
		respondValidation(c, err)
		return
	}

	added, warning, err := h.registry.AddDepartment(c.Request.Context(), req.Name)
	if err != nil {
		h.logger.WithError(err).WithField("department", req.Name).Error("部署の追加に失敗")
		respondError(c, err, "Failed to add department")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, DepartmentsResponseDTO{
		Departments: h.registry.Departments(),
		Added:       &added,
		Warning:     warning,
	})
}

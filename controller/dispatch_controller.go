package controller

import (
	"errors"
	"fieldfuze-dispatch/middelware"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/services"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type DispatchController struct {
	aggregator  services.DispatchAggregatorInterface
	gateway     services.UpdateGatewayInterface
	logService  services.DispatchLogServiceInterface
	logger      logger.Logger
	cacheHeader string
}

func NewDispatchController(svc services.ServiceContainerInterface, cfg *models.Config, log logger.Logger) *DispatchController {
	return &DispatchController{
		aggregator:  svc.GetDispatchAggregator(),
		gateway:     svc.GetUpdateGateway(),
		logService:  svc.GetDispatchLogService(),
		logger:      log,
		cacheHeader: fmt.Sprintf("private, max-age=%d, stale-while-revalidate=%d", cfg.CacheMaxAgeSeconds, cfg.StaleWhileRevalidateSeconds),
	}
}

// GetBoard handles GET /dispatch
// @Summary Read the dispatch board
// @Description Jobs in the date range joined with technicians, crews, customers and photos
// @Tags Dispatch
// @Security BearerAuth
// @Produce json
// @Param startDate query string false "First day (YYYY-MM-DD)"
// @Param endDate query string false "Last day, inclusive (YYYY-MM-DD)"
// @Param technicianIds query string false "Comma-separated technician ids"
// @Param crewIds query string false "Comma-separated crew ids"
// @Param statuses query string false "Comma-separated job statuses"
// @Param q query string false "Search text"
// @Success 200 {object} models.DispatchResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /dispatch [get]
func (h *DispatchController) GetBoard(c *gin.Context) {
	claims := middelware.GetClaims(c)
	if claims == nil {
		h.respondError(c, models.NewAuthError(models.ErrNotAuthenticated, "authentication required"), "Authentication required")
		return
	}

	q := models.DispatchQuery{
		StartDate:     strings.TrimSpace(c.Query("startDate")),
		EndDate:       strings.TrimSpace(c.Query("endDate")),
		TechnicianIDs: splitCSV(c.Query("technicianIds")),
		CrewIDs:       splitCSV(c.Query("crewIds")),
		Search:        c.Query("q"),
	}
	for _, s := range splitCSV(c.Query("statuses")) {
		q.Statuses = append(q.Statuses, models.JobStatus(s))
	}

	resp, err := h.aggregator.Aggregate(c.Request.Context(), claims.OrgID, q)
	if err != nil {
		h.respondError(c, err, "Failed to load dispatch board")
		return
	}

	c.Header("Cache-Control", h.cacheHeader)
	c.JSON(http.StatusOK, resp)
}

// UpdateJob handles PATCH /dispatch
// @Summary Update a job from the board
// @Tags Dispatch
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.JobUpdateRequest true "Job id and the fields to change"
// @Success 200 {object} models.APIResponse "Updated job row in data"
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /dispatch [patch]
func (h *DispatchController) UpdateJob(c *gin.Context) {
	var req models.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid job update body: %v", err)
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Status:  "error",
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
			Error: &models.APIError{
				Type:    "ValidationError",
				Details: err.Error(),
			},
		})
		return
	}

	row, err := h.gateway.UpdateJob(c.Request.Context(), middelware.GetClaims(c), &req)
	if err != nil {
		h.respondError(c, err, "Failed to update job")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Job updated successfully",
		Data:    row,
	})
}

// MarkDispatched handles POST /dispatch/log
// @Summary Mark a day as dispatched
// @Tags Dispatch
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.MarkDispatchedRequest true "Day to mark"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /dispatch/log [post]
func (h *DispatchController) MarkDispatched(c *gin.Context) {
	var req models.MarkDispatchedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid dispatch log body: %v", err)
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Status:  "error",
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
			Error: &models.APIError{
				Type:    "ValidationError",
				Details: err.Error(),
			},
		})
		return
	}

	entry, err := h.logService.MarkDispatched(c.Request.Context(), middelware.GetClaims(c), &req)
	if err != nil {
		h.respondError(c, err, "Failed to mark day dispatched")
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: "Day marked as dispatched",
		Data:    entry,
	})
}

// respondError writes the error envelope. Upstream failures keep their
// details in the log only.
func (h *DispatchController) respondError(c *gin.Context, err error, message string) {
	status := models.HTTPStatusFor(err)
	apiErr := &models.APIError{Type: models.ErrorType(err)}

	if status == http.StatusInternalServerError {
		h.logger.Errorf("%s: %v", message, err)
	} else {
		h.logger.Warnf("%s: %v", message, err)
		apiErr.Details = err.Error()
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			apiErr.Field = appErr.Field
			apiErr.Details = appErr.Message
		}
	}

	c.JSON(status, models.APIResponse{
		Status:  "error",
		Code:    status,
		Message: message,
		Error:   apiErr,
	})
}

// splitCSV splits a comma-separated parameter, dropping blanks. An absent
// parameter yields nil, meaning no restriction.
func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package handler

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crata-labs/crata-api/internal/service"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
	"github.com/crata-labs/crata-api/pkg/response"
)

// GroupAnalyticsHandler exposes group statistics endpoints.
type GroupAnalyticsHandler struct {
	analytics *service.GroupAnalyticsService
	reports   *service.ReportService
}

// NewGroupAnalyticsHandler constructs handler. reports may be nil when report
// export is disabled.
func NewGroupAnalyticsHandler(analytics *service.GroupAnalyticsService, reports *service.ReportService) *GroupAnalyticsHandler {
	return &GroupAnalyticsHandler{analytics: analytics, reports: reports}
}

// Analytics godoc
// @Summary Get the full behavioral aggregation for a group
// @Tags Groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /groups/{groupId}/analytics [get]
func (h *GroupAnalyticsHandler) Analytics(c *gin.Context) {
	groupID, ok := h.groupID(c)
	if !ok {
		return
	}
	result, err := h.analytics.GetGroupAnalytics(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Members godoc
// @Summary List completed respondents of a group
// @Tags Groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Param type query string false "Filter by trait value (substring match)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /groups/{groupId}/members [get]
func (h *GroupAnalyticsHandler) Members(c *gin.Context) {
	groupID, ok := h.groupID(c)
	if !ok {
		return
	}
	result, err := h.analytics.GetGroupMembers(c.Request.Context(), groupID, c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SubGroups godoc
// @Summary List direct sub-groups of a group
// @Tags Groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /groups/{groupId}/sub-groups [get]
func (h *GroupAnalyticsHandler) SubGroups(c *gin.Context) {
	groupID, ok := h.groupID(c)
	if !ok {
		return
	}
	result, err := h.analytics.GetSubGroups(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Comparison godoc
// @Summary Compare aggregations across a group's sub-groups
// @Tags Groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /groups/{groupId}/sub-groups/comparison [get]
func (h *GroupAnalyticsHandler) Comparison(c *gin.Context) {
	groupID, ok := h.groupID(c)
	if !ok {
		return
	}
	result, err := h.analytics.GetSubGroupComparison(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Report godoc
// @Summary Generate a downloadable group report
// @Tags Groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /groups/{groupId}/report [post]
func (h *GroupAnalyticsHandler) Report(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report export is disabled"))
		return
	}
	groupID, ok := h.groupID(c)
	if !ok {
		return
	}
	format := c.DefaultQuery("format", service.ReportFormatCSV)
	result, err := h.reports.GenerateGroupReport(c.Request.Context(), groupID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated report by signed token
// @Tags Groups
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Router /reports/download/{token} [get]
func (h *GroupAnalyticsHandler) Download(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report export is disabled"))
		return
	}
	file, err := h.reports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	path := file.Name()
	file.Close()
	c.FileAttachment(path, filepath.Base(path))
}

// SystemMetrics godoc
// @Summary Get aggregated instrumentation counters
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/system [get]
func (h *GroupAnalyticsHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), nil)
}

func (h *GroupAnalyticsHandler) groupID(c *gin.Context) (int64, bool) {
	raw := c.Param("groupId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "groupId must be a positive integer"))
		return 0, false
	}
	return id, true
}

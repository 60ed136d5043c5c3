package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crata-labs/crata-api/internal/dto"
	"github.com/crata-labs/crata-api/internal/service"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
	"github.com/crata-labs/crata-api/pkg/response"
)

// TestRunHandler exposes question delivery and submission endpoints.
type TestRunHandler struct {
	runs *service.TestRunService
}

// NewTestRunHandler constructs handler.
func NewTestRunHandler(runs *service.TestRunService) *TestRunHandler {
	return &TestRunHandler{runs: runs}
}

// Run godoc
// @Summary Get the active question set for a test
// @Tags Tests
// @Produce json
// @Param slug path string true "Test slug"
// @Success 200 {object} response.Envelope
// @Router /tests/{slug}/run [get]
func (h *TestRunHandler) Run(c *gin.Context) {
	result, err := h.runs.GetQuestions(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Submit godoc
// @Summary Submit a completed test run
// @Tags Tests
// @Accept json
// @Produce json
// @Param slug path string true "Test slug"
// @Param payload body dto.SubmitResultRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Router /tests/{slug}/results [post]
func (h *TestRunHandler) Submit(c *gin.Context) {
	var req dto.SubmitResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.runs.SubmitResult(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

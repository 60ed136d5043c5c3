package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crata-labs/crata-api/internal/dto"
	"github.com/crata-labs/crata-api/internal/service"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
	"github.com/crata-labs/crata-api/pkg/response"
)

// ManseHandler exposes chart derivation endpoints.
type ManseHandler struct {
	manse *service.ManseService
}

// NewManseHandler constructs handler.
func NewManseHandler(manse *service.ManseService) *ManseHandler {
	return &ManseHandler{manse: manse}
}

// Calc godoc
// @Summary Derive a chart for one birth input
// @Tags Manse
// @Accept json
// @Produce json
// @Param payload body dto.ManseCalcRequest true "Birth data"
// @Success 200 {object} response.Envelope
// @Router /manse/calc [post]
func (h *ManseHandler) Calc(c *gin.Context) {
	var req dto.ManseCalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.manse.Calc(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Seed godoc
// @Summary Enqueue a reference-table seed import
// @Tags Manse
// @Accept json
// @Produce json
// @Param payload body dto.ManseSeedRequest true "Seed file"
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /manse/seed [post]
func (h *ManseHandler) Seed(c *gin.Context) {
	var req dto.ManseSeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	ack, err := h.manse.SeedFromFile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, ack, nil)
}

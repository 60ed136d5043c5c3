package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crata-labs/crata-api/internal/dto"
	"github.com/crata-labs/crata-api/internal/models"
	"github.com/crata-labs/crata-api/internal/service"
	"github.com/crata-labs/crata-api/pkg/response"
)

type manseRepoStub struct {
	bySolar map[string]*models.ManseRecord
}

func (s *manseRepoStub) FindBySolarDate(ctx context.Context, date string) (*models.ManseRecord, error) {
	return s.bySolar[date], nil
}

func (s *manseRepoStub) FindByLunarDate(ctx context.Context, date string) (*models.ManseRecord, error) {
	return nil, nil
}

func (s *manseRepoStub) FindSeasonAfter(ctx context.Context, at time.Time) (*models.ManseRecord, error) {
	return nil, nil
}

func (s *manseRepoStub) FindSeasonBefore(ctx context.Context, at time.Time) (*models.ManseRecord, error) {
	return nil, nil
}

func (s *manseRepoStub) BulkInsert(ctx context.Context, records []models.ManseRecord) (int, error) {
	return len(records), nil
}

func newManseHandler(repo *manseRepoStub) *ManseHandler {
	svc := service.NewManseService(repo, nil, nil, service.ManseSeedConfig{})
	return NewManseHandler(svc)
}

func TestManseHandlerCalc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &manseRepoStub{bySolar: map[string]*models.ManseRecord{
		"1990-03-15": {
			SolarDate: "1990-03-15", LunarDate: "1990-02-19",
			YearSky: "경", YearGround: "오",
			MonthSky: "기", MonthGround: "묘",
			DaySky: "갑", DayGround: "자",
		},
	}}
	h := newManseHandler(repo)

	payload, _ := json.Marshal(dto.ManseCalcRequest{Gender: "MALE", Birthday: "19900315"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/manse/calc", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Calc(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	member, ok := data["member"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1990-03-15", member["birthday"])
}

func TestManseHandlerCalcInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newManseHandler(&manseRepoStub{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/manse/calc", bytes.NewBufferString(`{"birthday":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Calc(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManseHandlerCalcMissingData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newManseHandler(&manseRepoStub{})

	payload, _ := json.Marshal(dto.ManseCalcRequest{Birthday: "18000101"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/manse/calc", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Calc(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

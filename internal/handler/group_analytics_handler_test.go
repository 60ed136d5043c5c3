package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/crata-labs/crata-api/internal/models"
	"github.com/crata-labs/crata-api/internal/service"
)

type groupRepoStub struct {
	group *models.Group
}

func (s *groupRepoStub) FindByID(ctx context.Context, groupID int64) (*models.Group, error) {
	return s.group, nil
}

func (s *groupRepoStub) ListChildren(ctx context.Context, parentID int64) ([]models.Group, error) {
	return nil, nil
}

type ticketRepoStub struct{}

func (s *ticketRepoStub) CountByGroup(ctx context.Context, groupID int64) (int, error) {
	return 0, nil
}

type resultRepoStub struct{}

func (s *resultRepoStub) ListByGroup(ctx context.Context, groupID int64) ([]models.GroupResult, error) {
	return nil, nil
}

func newAnalyticsHandler() *GroupAnalyticsHandler {
	svc := service.NewGroupAnalyticsService(
		&groupRepoStub{group: &models.Group{GroupID: 1, GroupName: "Acme"}},
		&ticketRepoStub{}, &resultRepoStub{}, nil, nil, nil,
	)
	return NewGroupAnalyticsHandler(svc, nil)
}

func analyticsRequest(t *testing.T, groupID string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/groups/"+groupID+"/analytics", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "groupId", Value: groupID}}
	return w, c
}

func TestGroupAnalyticsHandlerAnalytics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAnalyticsHandler()

	w, c := analyticsRequest(t, "1")
	h.Analytics(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGroupAnalyticsHandlerRejectsBadGroupID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAnalyticsHandler()

	for _, raw := range []string{"abc", "0", "-3"} {
		w, c := analyticsRequest(t, raw)
		h.Analytics(c)
		require.Equal(t, http.StatusBadRequest, w.Code, "groupId %q", raw)
	}
}

func TestGroupAnalyticsHandlerReportDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAnalyticsHandler()

	w, c := analyticsRequest(t, "1")
	h.Report(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

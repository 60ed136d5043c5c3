package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crata-labs/crata-api/internal/dto"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
	"github.com/crata-labs/crata-api/pkg/storage"
)

type mockAnalyticsProvider struct {
	analytics *dto.GroupAnalytics
	members   *dto.GroupMemberList
}

func (m *mockAnalyticsProvider) GetGroupAnalytics(ctx context.Context, groupID int64) (*dto.GroupAnalytics, error) {
	return m.analytics, nil
}

func (m *mockAnalyticsProvider) GetGroupMembers(ctx context.Context, groupID int64, typeFilter string) (*dto.GroupMemberList, error) {
	return m.members, nil
}

func sampleAnalytics() *dto.GroupAnalytics {
	return &dto.GroupAnalytics{
		GroupID:        1,
		GroupName:      "Acme",
		TotalMembers:   4,
		CompletedCount: 2,
		CompletionRate: 50,
		BirthdayBased: dto.BirthdayBased{
			MotivationLocation: dto.TypeDistribution{
				"internal": {Count: 1, Percentage: 50},
				"external": {Count: 1, Percentage: 50},
			},
		},
		OverallStats: dto.OverallStats{AverageScore: 3.5, StandardDeviation: 1.2},
	}
}

func newReportService(t *testing.T) *ReportService {
	t.Helper()
	store, err := storage.NewReportStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("report-test-secret", time.Hour)

	provider := &mockAnalyticsProvider{
		analytics: sampleAnalytics(),
		members: &dto.GroupMemberList{
			Members: []dto.GroupMember{{ClientName: "Kim", BirthdayTypes: dto.MemberTraits{MotivationLocation: "internal"}}},
			Total:   1,
		},
	}
	return NewReportService(provider, store, signer, ReportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
}

func TestGenerateGroupReportCSV(t *testing.T) {
	svc := newReportService(t)

	result, err := svc.GenerateGroupReport(context.Background(), 1, ReportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, ReportFormatCSV, result.Format)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))
	assert.Contains(t, result.URL, "/api/v1/reports/download/")
	assert.NotEmpty(t, result.Token)

	file, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close()

	buf := make([]byte, 4096)
	n, _ := file.Read(buf)
	content := string(buf[:n])
	assert.Contains(t, content, "section,item,value")
	assert.Contains(t, content, "summary,groupName,Acme")
	assert.Contains(t, content, "members,Kim,internal")
}

func TestGenerateGroupReportPDF(t *testing.T) {
	svc := newReportService(t)

	result, err := svc.GenerateGroupReport(context.Background(), 1, ReportFormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))

	file, err := svc.Open(result.Token)
	require.NoError(t, err)
	file.Close()
}

func TestGenerateGroupReportUnsupportedFormat(t *testing.T) {
	svc := newReportService(t)

	_, err := svc.GenerateGroupReport(context.Background(), 1, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOpenRejectsForgedToken(t *testing.T) {
	svc := newReportService(t)

	_, err := svc.Open("forged-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

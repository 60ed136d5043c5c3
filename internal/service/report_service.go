package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crata-labs/crata-api/internal/dto"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
	"github.com/crata-labs/crata-api/pkg/export"
	"github.com/crata-labs/crata-api/pkg/storage"
)

// Report formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type groupAnalyticsProvider interface {
	GetGroupAnalytics(ctx context.Context, groupID int64) (*dto.GroupAnalytics, error)
	GetGroupMembers(ctx context.Context, groupID int64, typeFilter string) (*dto.GroupMemberList, error)
}

type reportStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Sweep(ttl time.Duration) (int, error)
}

type reportRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportConfig tunes report generation.
type ReportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ReportResult captures successful generation metadata.
type ReportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       string
	ExpiresAt    time.Time
}

// ReportService renders group analytics into downloadable CSV/PDF files.
type ReportService struct {
	analytics groupAnalyticsProvider
	storage   reportStorage
	csv       reportRenderer
	pdf       reportRenderer
	signer    *storage.DownloadSigner
	logger    *zap.Logger
	cfg       ReportConfig
}

// NewReportService constructs a ReportService.
func NewReportService(analytics groupAnalyticsProvider, store reportStorage, signer *storage.DownloadSigner, cfg ReportConfig, logger *zap.Logger, csv reportRenderer, pdf reportRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		analytics: analytics,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// GenerateGroupReport renders the group's aggregation and member listing into
// the requested format and stores the file behind a signed download token.
func (s *ReportService) GenerateGroupReport(ctx context.Context, groupID int64, format string) (*ReportResult, error) {
	format = strings.ToLower(format)
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	analytics, err := s.analytics.GetGroupAnalytics(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.analytics.GetGroupMembers(ctx, groupID, "")
	if err != nil {
		return nil, err
	}

	dataset := buildGroupReportDataset(analytics, members)

	var payload []byte
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := fmt.Sprintf("group_%d_%s.%s", groupID, time.Now().UTC().Format("20060102_150405"), format)
	stored, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Sign(stored)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Info("group report generated",
		zap.Int64("group_id", groupID), zap.String("format", format), zap.String("file", stored))

	return &ReportResult{
		RelativePath: stored,
		Token:        token,
		URL:          fmt.Sprintf("%s/reports/download/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and returns the file handle.
func (s *ReportService) Open(token string) (*os.File, error) {
	name, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.storage.Open(name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file no longer available")
	}
	return file, nil
}

// Cleanup removes report files older than the configured TTL and reports how
// many were swept.
func (s *ReportService) Cleanup() (int, error) {
	return s.storage.Sweep(s.cfg.ResultTTL)
}

func buildGroupReportDataset(analytics *dto.GroupAnalytics, members *dto.GroupMemberList) export.Dataset {
	summary := export.Section{Name: "summary", Rows: []export.Row{
		{Item: "groupName", Value: analytics.GroupName},
		{Item: "totalMembers", Value: strconv.Itoa(analytics.TotalMembers)},
		{Item: "completedCount", Value: strconv.Itoa(analytics.CompletedCount)},
		{Item: "completionRate", Value: strconv.Itoa(analytics.CompletionRate) + "%"},
		{Item: "averageScore", Value: fmt.Sprintf("%.2f", analytics.OverallStats.AverageScore)},
		{Item: "standardDeviation", Value: fmt.Sprintf("%.2f", analytics.OverallStats.StandardDeviation)},
	}}

	sections := []export.Section{
		summary,
		distributionSection("motivationLocation", analytics.BirthdayBased.MotivationLocation),
		distributionSection("orgStructure", analytics.BirthdayBased.OrgStructure),
		distributionSection("selfDetermination", analytics.BirthdayBased.SelfDetermination),
		distributionSection("selfImprovement", analytics.BirthdayBased.SelfImprovement),
	}

	roster := export.Section{Name: "members"}
	for _, member := range members.Members {
		roster.Rows = append(roster.Rows, export.Row{
			Item:  member.ClientName,
			Value: strings.TrimSpace(member.BirthdayTypes.MotivationLocation + " " + member.BirthdayTypes.MotivationOrientation),
		})
	}
	sections = append(sections, roster)

	return export.Dataset{
		Title:    fmt.Sprintf("Group Report %s", analytics.GroupName),
		Sections: sections,
	}
}

func distributionSection(name string, dist dto.TypeDistribution) export.Section {
	keys := make([]string, 0, len(dist))
	for key := range dist {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	section := export.Section{Name: name, Rows: make([]export.Row, 0, len(keys))}
	for _, key := range keys {
		tc := dist[key]
		section.Rows = append(section.Rows, export.Row{Item: key, Value: fmt.Sprintf("%d (%d%%)", tc.Count, tc.Percentage)})
	}
	return section
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/crata-labs/crata-api/internal/dto"
	"github.com/crata-labs/crata-api/internal/models"
	"github.com/crata-labs/crata-api/internal/saju"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
)

type testVersionRepo interface {
	FindActiveBySlug(ctx context.Context, slug string) (*models.TestVersion, error)
	ListQuestions(ctx context.Context, versionID string) ([]models.VersionQuestion, error)
	ListOptions(ctx context.Context, optionSetIDs []string) ([]models.VersionOption, error)
}

type testTicketRepo interface {
	FindByCode(ctx context.Context, code string) (*models.Ticket, error)
	MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) error
}

type testResultRepo interface {
	Insert(ctx context.Context, result *models.TestResult) error
}

type chartDeriver interface {
	Derive(ctx context.Context, in saju.Input) (*saju.Result, error)
}

// TestRunService serves active question sets and accepts submissions.
type TestRunService struct {
	versions  testVersionRepo
	tickets   testTicketRepo
	results   testResultRepo
	deriver   chartDeriver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTestRunService constructs a TestRunService.
func NewTestRunService(versions testVersionRepo, tickets testTicketRepo, results testResultRepo, deriver chartDeriver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TestRunService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TestRunService{
		versions:  versions,
		tickets:   tickets,
		results:   results,
		deriver:   deriver,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// GetQuestions returns the active question set for a test slug. Questions are
// ordered by category parent first (uncategorised last), then display order;
// options within a set descend by score.
func (s *TestRunService) GetQuestions(ctx context.Context, slug string) (*dto.RunResponse, error) {
	cacheKey := "testrun:questions:" + slug
	var cached dto.RunResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	version, err := s.versions.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active version for test")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test version")
	}

	questions, err := s.versions.ListQuestions(ctx, version.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load questions")
	}

	optionsBySet, err := s.loadOptions(ctx, questions)
	if err != nil {
		return nil, err
	}

	resp := &dto.RunResponse{
		Test: dto.RunTest{
			ID:          version.TestID,
			Slug:        version.TestSlug,
			Name:        version.TestName,
			Description: version.Description,
		},
		Version:   dto.RunVersion{ID: version.ID, Code: version.VersionCode},
		Questions: buildRunQuestions(questions, optionsBySet),
	}

	_ = s.cache.Set(ctx, cacheKey, resp, 0)
	return resp, nil
}

// SubmitResult validates and stores one submission, consuming the ticket when
// one is presented. Chart derivation failures degrade to a null snapshot
// rather than rejecting the answers.
func (s *TestRunService) SubmitResult(ctx context.Context, slug string, req dto.SubmitResultRequest) (*dto.SubmitResultResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if len(req.Answers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "answers must not be empty")
	}

	version, err := s.versions.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active version for test")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test version")
	}

	questions, err := s.versions.ListQuestions(ctx, version.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load questions")
	}
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.QuestionID] = struct{}{}
	}
	for _, a := range req.Answers {
		if _, ok := known[a.QuestionID]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "answer references unknown question "+a.QuestionID)
		}
	}

	var ticketID *string
	var groupID *int64
	if req.TicketCode != "" {
		ticket, err := s.consumeTicket(ctx, req.TicketCode)
		if err != nil {
			return nil, err
		}
		ticketID = &ticket.TicketID
		groupID = ticket.GroupID
	}

	result := &models.TestResult{
		TestID:        version.TestID,
		VersionID:     version.ID,
		TicketID:      ticketID,
		GroupID:       groupID,
		ResultVersion: req.ResultVersion,
		UserMeta: models.UserMetaJSON{UserMeta: models.UserMeta{
			Name:         req.UserMeta.Name,
			Gender:       req.UserMeta.Gender,
			Birthday:     req.UserMeta.Birthday,
			BirthdayType: req.UserMeta.BirthdayType,
			Time:         req.UserMeta.Time,
		}},
		Answers:  models.AnswerListJSON{AnswerList: toAnswerList(req.Answers)},
		Snapshot: models.SnapshotJSON{ResultSnapshot: s.buildSnapshot(ctx, req)},
	}

	if err := s.results.Insert(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store result")
	}

	if groupID != nil {
		_ = s.cache.Invalidate(ctx, groupAnalyticsCachePattern(*groupID))
	}

	return &dto.SubmitResultResponse{
		ResultID:  result.ID,
		TestID:    result.TestID,
		VersionID: result.VersionID,
	}, nil
}

func (s *TestRunService) consumeTicket(ctx context.Context, code string) (*models.Ticket, error) {
	ticket, err := s.tickets.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ticket not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ticket")
	}
	if ticket.Status != models.TicketAvailable {
		return nil, appErrors.Clone(appErrors.ErrTicketConsumed, "ticket has already been used")
	}

	now := time.Now().UTC()
	if err := s.tickets.MarkUsed(ctx, ticket.TicketID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race against a concurrent submission.
			return nil, appErrors.Clone(appErrors.ErrTicketConsumed, "ticket has already been used")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume ticket")
	}
	ticket.Status = models.TicketUsed
	ticket.IsCompleted = true
	ticket.UsedAt = &now
	return ticket, nil
}

// buildSnapshot freezes the derived behavioral payload at submission time.
// Everything stored here is immutable; reads never recompute it.
func (s *TestRunService) buildSnapshot(ctx context.Context, req dto.SubmitResultRequest) models.ResultSnapshot {
	snapshot := models.ResultSnapshot{}
	if raw, ok := req.ResultSnapshot["mainType"].(string); ok {
		snapshot.MainType = raw
	}
	if raw, ok := req.ResultSnapshot["scores"].(map[string]any); ok {
		scores := make(map[string]int, len(raw))
		for k, v := range raw {
			if f, ok := v.(float64); ok {
				scores[k] = int(f)
			}
		}
		snapshot.Scores = scores
	}

	if req.UserMeta.Birthday == "" {
		return snapshot
	}

	birthdayType := req.UserMeta.BirthdayType
	if birthdayType == "" {
		birthdayType = saju.CalendarSolar
	}
	var birthTime *string
	if req.UserMeta.Time != "" {
		t := req.UserMeta.Time
		birthTime = &t
	}

	chart, err := s.deriver.Derive(ctx, saju.Input{
		Gender:       req.UserMeta.Gender,
		BirthdayType: birthdayType,
		Birthday:     req.UserMeta.Birthday,
		Time:         birthTime,
	})
	if err != nil {
		s.logger.Warn("chart derivation failed, storing result without snapshot",
			zap.String("birthday", req.UserMeta.Birthday), zap.Error(err))
		return snapshot
	}

	snapshot.Manse = saju.BuildSnapshot(chart)
	return snapshot
}

func (s *TestRunService) loadOptions(ctx context.Context, questions []models.VersionQuestion) (map[string][]dto.RunOption, error) {
	seen := make(map[string]struct{})
	var setIDs []string
	for _, q := range questions {
		if q.OptionSetID == nil {
			continue
		}
		if _, ok := seen[*q.OptionSetID]; ok {
			continue
		}
		seen[*q.OptionSetID] = struct{}{}
		setIDs = append(setIDs, *q.OptionSetID)
	}

	options, err := s.versions.ListOptions(ctx, setIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load options")
	}

	bySet := make(map[string][]dto.RunOption, len(setIDs))
	for _, opt := range options {
		bySet[opt.OptionSetID] = append(bySet[opt.OptionSetID], dto.RunOption{
			ID:        opt.OptionID,
			Label:     opt.Label,
			ValueCode: opt.ValueCode,
			Score:     opt.Score,
		})
	}
	for _, opts := range bySet {
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].Score > opts[j].Score })
	}
	return bySet, nil
}

func buildRunQuestions(questions []models.VersionQuestion, optionsBySet map[string][]dto.RunOption) []dto.RunQuestion {
	out := make([]dto.RunQuestion, 0, len(questions))
	for _, q := range questions {
		item := dto.RunQuestion{
			ID:    q.QuestionID,
			Order: q.DisplayOrder,
			Text:  q.Text,
		}
		if q.CategoryID != nil {
			item.Category = &dto.RunCategory{
				ID:       *q.CategoryID,
				Code:     deref(q.CategoryCode),
				Name:     deref(q.CategoryName),
				ParentID: q.ParentID,
			}
		}
		if q.OptionSetID != nil {
			item.OptionSet = &dto.RunOptionSet{
				ID:          *q.OptionSetID,
				Name:        deref(q.OptionSetName),
				Description: deref(q.OptionSetDescr),
				Options:     optionsBySet[*q.OptionSetID],
			}
		}
		out = append(out, item)
	}

	// Category parents cluster the questionnaire: parented categories sort by
	// parent id, orphans go last, display order breaks ties.
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := runParentID(out[i]), runParentID(out[j])
		if pi != pj {
			if pi == "" {
				return false
			}
			if pj == "" {
				return true
			}
			return strings.Compare(pi, pj) < 0
		}
		return out[i].Order < out[j].Order
	})
	return out
}

func runParentID(q dto.RunQuestion) string {
	if q.Category == nil || q.Category.ParentID == nil {
		return ""
	}
	return *q.Category.ParentID
}

func toAnswerList(answers []dto.AnswerInput) models.AnswerList {
	out := make(models.AnswerList, 0, len(answers))
	for _, a := range answers {
		out = append(out, models.Answer{
			QuestionID:   a.QuestionID,
			CategoryID:   a.CategoryID,
			CategoryName: a.CategoryName,
			ParentID:     a.ParentID,
			ValueCode:    a.ValueCode,
			Score:        a.Score,
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

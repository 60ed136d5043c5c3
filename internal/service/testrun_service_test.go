package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crata-labs/crata-api/internal/dto"
	"github.com/crata-labs/crata-api/internal/models"
	"github.com/crata-labs/crata-api/internal/saju"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
)

type mockVersionRepo struct {
	version   *models.TestVersion
	questions []models.VersionQuestion
	options   []models.VersionOption

	findErr      error
	requestedIDs []string
}

func (m *mockVersionRepo) FindActiveBySlug(ctx context.Context, slug string) (*models.TestVersion, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.version, nil
}

func (m *mockVersionRepo) ListQuestions(ctx context.Context, versionID string) ([]models.VersionQuestion, error) {
	return m.questions, nil
}

func (m *mockVersionRepo) ListOptions(ctx context.Context, optionSetIDs []string) ([]models.VersionOption, error) {
	m.requestedIDs = optionSetIDs
	return m.options, nil
}

type mockTicketRepo struct {
	ticket      *models.Ticket
	findErr     error
	markErr     error
	markedID    string
	markedCalls int
}

func (m *mockTicketRepo) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.ticket, nil
}

func (m *mockTicketRepo) MarkUsed(ctx context.Context, ticketID string, usedAt time.Time) error {
	m.markedCalls++
	m.markedID = ticketID
	return m.markErr
}

type mockResultRepo struct {
	inserted  *models.TestResult
	insertErr error
}

func (m *mockResultRepo) Insert(ctx context.Context, result *models.TestResult) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	result.ID = "res-1"
	m.inserted = result
	return nil
}

type mockDeriver struct {
	result *saju.Result
	err    error
	input  *saju.Input
}

func (m *mockDeriver) Derive(ctx context.Context, in saju.Input) (*saju.Result, error) {
	m.input = &in
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func activeVersion() *models.TestVersion {
	return &models.TestVersion{
		ID:          "v-1",
		TestID:      "t-1",
		TestSlug:    "crata-basic",
		TestName:    "Crata Basic",
		VersionCode: "2025.1",
		Status:      "ACTIVE",
	}
}

func newRunService(versions *mockVersionRepo, tickets *mockTicketRepo, results *mockResultRepo, deriver *mockDeriver) *TestRunService {
	return NewTestRunService(versions, tickets, results, deriver, nil, nil, nil)
}

func TestGetQuestionsNoActiveVersion(t *testing.T) {
	svc := newRunService(&mockVersionRepo{findErr: sql.ErrNoRows}, &mockTicketRepo{}, &mockResultRepo{}, &mockDeriver{})

	_, err := svc.GetQuestions(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGetQuestionsOrdering(t *testing.T) {
	parentA, parentB := "P_A", "P_B"
	catA, catB := "c-a", "c-b"
	setID := "set-1"

	versions := &mockVersionRepo{
		version: activeVersion(),
		questions: []models.VersionQuestion{
			{QuestionID: "q-orphan", DisplayOrder: 1},
			{QuestionID: "q-b1", DisplayOrder: 2, CategoryID: &catB, ParentID: &parentB},
			{QuestionID: "q-a2", DisplayOrder: 5, CategoryID: &catA, ParentID: &parentA, OptionSetID: &setID},
			{QuestionID: "q-a1", DisplayOrder: 3, CategoryID: &catA, ParentID: &parentA, OptionSetID: &setID},
		},
		options: []models.VersionOption{
			{OptionID: "o-low", OptionSetID: setID, Label: "아니다", Score: 1},
			{OptionID: "o-high", OptionSetID: setID, Label: "그렇다", Score: 5},
		},
	}
	svc := newRunService(versions, &mockTicketRepo{}, &mockResultRepo{}, &mockDeriver{})

	resp, err := svc.GetQuestions(context.Background(), "crata-basic")
	require.NoError(t, err)

	assert.Equal(t, "crata-basic", resp.Test.Slug)
	assert.Equal(t, "2025.1", resp.Version.Code)

	// Parented questions cluster by parent id, orphans trail, display order
	// breaks ties within a cluster.
	ids := make([]string, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"q-a1", "q-a2", "q-b1", "q-orphan"}, ids)

	// Shared option sets are fetched once and sorted by score descending.
	assert.Equal(t, []string{setID}, versions.requestedIDs)
	opts := resp.Questions[0].OptionSet.Options
	require.Len(t, opts, 2)
	assert.Equal(t, "o-high", opts[0].ID)
	assert.Equal(t, "o-low", opts[1].ID)
}

func validSubmission() dto.SubmitResultRequest {
	return dto.SubmitResultRequest{
		Answers: []dto.AnswerInput{
			{QuestionID: "q-1", CategoryID: "CAT_TASK", Score: 4},
		},
		ResultVersion: "2025.1",
	}
}

func TestSubmitResultEmptyAnswers(t *testing.T) {
	svc := newRunService(&mockVersionRepo{version: activeVersion()}, &mockTicketRepo{}, &mockResultRepo{}, &mockDeriver{})

	_, err := svc.SubmitResult(context.Background(), "crata-basic", dto.SubmitResultRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitResultUnknownQuestion(t *testing.T) {
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-other"}},
	}
	svc := newRunService(versions, &mockTicketRepo{}, &mockResultRepo{}, &mockDeriver{})

	_, err := svc.SubmitResult(context.Background(), "crata-basic", validSubmission())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "q-1")
}

func TestSubmitResultStoresAnswers(t *testing.T) {
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-1"}},
	}
	results := &mockResultRepo{}
	svc := newRunService(versions, &mockTicketRepo{}, results, &mockDeriver{})

	req := validSubmission()
	req.ResultSnapshot = map[string]any{
		"mainType": "strategist",
		"scores":   map[string]any{"grit": float64(72)},
	}

	resp, err := svc.SubmitResult(context.Background(), "crata-basic", req)
	require.NoError(t, err)
	assert.Equal(t, "res-1", resp.ResultID)
	assert.Equal(t, "t-1", resp.TestID)

	require.NotNil(t, results.inserted)
	assert.Nil(t, results.inserted.TicketID)
	assert.Equal(t, "strategist", results.inserted.Snapshot.MainType)
	assert.Equal(t, map[string]int{"grit": 72}, results.inserted.Snapshot.Scores)
	assert.Nil(t, results.inserted.Snapshot.Manse)
	require.Len(t, results.inserted.Answers.AnswerList, 1)
	assert.Equal(t, "CAT_TASK", results.inserted.Answers.AnswerList[0].CategoryID)
}

func TestSubmitResultConsumesTicket(t *testing.T) {
	groupID := int64(7)
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-1"}},
	}
	tickets := &mockTicketRepo{ticket: &models.Ticket{
		TicketID: "tk-1",
		Code:     "CODE-1",
		Status:   models.TicketAvailable,
		GroupID:  &groupID,
	}}
	results := &mockResultRepo{}
	svc := newRunService(versions, tickets, results, &mockDeriver{})

	req := validSubmission()
	req.TicketCode = "CODE-1"

	_, err := svc.SubmitResult(context.Background(), "crata-basic", req)
	require.NoError(t, err)

	assert.Equal(t, "tk-1", tickets.markedID)
	require.NotNil(t, results.inserted.TicketID)
	assert.Equal(t, "tk-1", *results.inserted.TicketID)
	require.NotNil(t, results.inserted.GroupID)
	assert.Equal(t, groupID, *results.inserted.GroupID)
}

func TestSubmitResultTicketAlreadyUsed(t *testing.T) {
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-1"}},
	}
	tickets := &mockTicketRepo{ticket: &models.Ticket{TicketID: "tk-1", Status: models.TicketUsed}}
	svc := newRunService(versions, tickets, &mockResultRepo{}, &mockDeriver{})

	req := validSubmission()
	req.TicketCode = "CODE-1"

	_, err := svc.SubmitResult(context.Background(), "crata-basic", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTicketConsumed.Code, appErrors.FromError(err).Code)
	assert.Zero(t, tickets.markedCalls)
}

func TestSubmitResultTicketRaceLost(t *testing.T) {
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-1"}},
	}
	tickets := &mockTicketRepo{
		ticket:  &models.Ticket{TicketID: "tk-1", Status: models.TicketAvailable},
		markErr: sql.ErrNoRows,
	}
	svc := newRunService(versions, tickets, &mockResultRepo{}, &mockDeriver{})

	req := validSubmission()
	req.TicketCode = "CODE-1"

	_, err := svc.SubmitResult(context.Background(), "crata-basic", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTicketConsumed.Code, appErrors.FromError(err).Code)
}

func TestSubmitResultDerivesChart(t *testing.T) {
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-1"}},
	}
	results := &mockResultRepo{}
	deriver := &mockDeriver{result: &saju.Result{
		DaySky:    &saju.Star{Korean: "갑", TenStar: saju.StarBigyeon},
		DayGround: &saju.Star{Korean: "자", TenStar: saju.StarJeongin},
	}}
	svc := newRunService(versions, &mockTicketRepo{}, results, deriver)

	req := validSubmission()
	req.UserMeta = dto.UserMetaInput{
		Name:         "Kim",
		Gender:       "FEMALE",
		Birthday:     "19900315",
		BirthdayType: saju.CalendarSolar,
		Time:         "09:30",
	}

	_, err := svc.SubmitResult(context.Background(), "crata-basic", req)
	require.NoError(t, err)

	require.NotNil(t, deriver.input)
	assert.Equal(t, "19900315", deriver.input.Birthday)
	require.NotNil(t, deriver.input.Time)
	assert.Equal(t, "09:30", *deriver.input.Time)

	snap := results.inserted.Snapshot.Manse
	require.NotNil(t, snap)
	assert.Equal(t, "갑", snap.DayStem)
}

func TestSubmitResultDerivationFailureDegrades(t *testing.T) {
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-1"}},
	}
	results := &mockResultRepo{}
	deriver := &mockDeriver{err: saju.ErrRecordNotFound}
	svc := newRunService(versions, &mockTicketRepo{}, results, deriver)

	req := validSubmission()
	req.UserMeta.Birthday = "18000101"

	_, err := svc.SubmitResult(context.Background(), "crata-basic", req)
	require.NoError(t, err)
	assert.Nil(t, results.inserted.Snapshot.Manse)
}

func TestSubmitResultDefaultsCalendarToSolar(t *testing.T) {
	versions := &mockVersionRepo{
		version:   activeVersion(),
		questions: []models.VersionQuestion{{QuestionID: "q-1"}},
	}
	deriver := &mockDeriver{err: errors.New("no data")}
	svc := newRunService(versions, &mockTicketRepo{}, &mockResultRepo{}, deriver)

	req := validSubmission()
	req.UserMeta.Birthday = "19900315"

	_, err := svc.SubmitResult(context.Background(), "crata-basic", req)
	require.NoError(t, err)
	require.NotNil(t, deriver.input)
	assert.Equal(t, saju.CalendarSolar, deriver.input.BirthdayType)
	assert.Nil(t, deriver.input.Time)
}

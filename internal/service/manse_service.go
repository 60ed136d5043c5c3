package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crata-labs/crata-api/internal/dto"
	"github.com/crata-labs/crata-api/internal/models"
	"github.com/crata-labs/crata-api/internal/saju"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
	"github.com/crata-labs/crata-api/pkg/jobs"
)

// JobTypeManseSeed labels seed import jobs on the background queue.
const JobTypeManseSeed = "manse_seed_import"

type manseCalendarRepo interface {
	FindBySolarDate(ctx context.Context, date string) (*models.ManseRecord, error)
	FindByLunarDate(ctx context.Context, date string) (*models.ManseRecord, error)
	FindSeasonAfter(ctx context.Context, at time.Time) (*models.ManseRecord, error)
	FindSeasonBefore(ctx context.Context, at time.Time) (*models.ManseRecord, error)
	BulkInsert(ctx context.Context, records []models.ManseRecord) (int, error)
}

// ManseSeedConfig controls the seed import pipeline.
type ManseSeedConfig struct {
	SeedDir   string
	BatchSize int
}

// ManseService exposes chart derivation and the reference-table seed import.
type ManseService struct {
	repo      manseCalendarRepo
	deriver   *saju.Deriver
	queue     *jobs.Runner
	validator *validator.Validate
	logger    *zap.Logger
	seed      ManseSeedConfig
}

// NewManseService constructs a ManseService.
func NewManseService(repo manseCalendarRepo, validate *validator.Validate, logger *zap.Logger, seed ManseSeedConfig) *ManseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if seed.BatchSize <= 0 {
		seed.BatchSize = 500
	}
	return &ManseService{
		repo:      repo,
		deriver:   saju.NewDeriver(&calendarProvider{repo: repo}),
		validator: validate,
		logger:    logger,
		seed:      seed,
	}
}

// AttachQueue wires the background runner used for seed imports. The runner's
// handler must be ProcessSeedJob.
func (s *ManseService) AttachQueue(q *jobs.Runner) {
	s.queue = q
}

// Deriver exposes the underlying chart deriver for sibling services.
func (s *ManseService) Deriver() *saju.Deriver {
	return s.deriver
}

// Calc derives a chart and behavioral snapshot for one birth input without
// persisting anything.
func (s *ManseService) Calc(ctx context.Context, req dto.ManseCalcRequest) (*dto.ManseCalcResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manse calc payload")
	}

	birthdayType := req.BirthdayType
	if birthdayType == "" {
		birthdayType = saju.CalendarSolar
	}

	var birthTime *string
	if req.Time != "" {
		birthTime = &req.Time
	}

	result, err := s.deriver.Derive(ctx, saju.Input{
		Gender:       req.Gender,
		BirthdayType: birthdayType,
		Birthday:     req.Birthday,
		Time:         birthTime,
	})
	if err != nil {
		if errors.Is(err, saju.ErrRecordNotFound) {
			return nil, appErrors.Clone(appErrors.ErrManseMissing, "no calendrical data for the given birthday")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive chart")
	}

	snapshot := saju.BuildSnapshot(result)

	return &dto.ManseCalcResponse{
		Member: dto.ManseMember{
			Birthday:     result.Birthday,
			Time:         result.Time,
			BirthdayType: result.BirthdayType,
			Gender:       result.Gender,
		},
		Saju:     result,
		Snapshot: snapshot,
	}, nil
}

// SeedFromFile enqueues a background import of one seed dump file. The file
// must live inside the configured seed directory.
func (s *ManseService) SeedFromFile(ctx context.Context, req dto.ManseSeedRequest) (*dto.ManseSeedResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid seed payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "seed queue is not running")
	}

	fileName := filepath.Base(req.FileName)
	path := filepath.Join(s.seed.SeedDir, fileName)
	if _, err := os.Stat(path); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("seed file %s not found", fileName))
	}

	jobID := uuid.NewString()
	if err := s.queue.Submit(jobs.Task{ID: jobID, Kind: JobTypeManseSeed, FilePath: path}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue seed import")
	}

	s.logger.Info("manse seed import enqueued", zap.String("job_id", jobID), zap.String("file", fileName))
	return &dto.ManseSeedResponse{JobID: jobID, FileName: fileName, Status: "QUEUED"}, nil
}

// ProcessSeedJob imports one seed dump file. It is the handler behind the
// seed runner and streams the file in batches so multi-decade dumps do not
// load into memory at once.
func (s *ManseService) ProcessSeedJob(ctx context.Context, task jobs.Task) error {
	path := task.FilePath
	if path == "" {
		return fmt.Errorf("seed task %s: no file path", task.ID)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 11

	// Header row is required and skipped.
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("read seed header: %w", err)
	}

	batch := make([]models.ManseRecord, 0, s.seed.BatchSize)
	total, line := 0, 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read seed row %d: %w", line, err)
		}
		line++

		rec, err := parseSeedRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed seed row", zap.Int("line", line), zap.Error(err))
			continue
		}
		batch = append(batch, rec)

		if len(batch) >= s.seed.BatchSize {
			n, err := s.repo.BulkInsert(ctx, batch)
			if err != nil {
				return fmt.Errorf("insert seed batch at line %d: %w", line, err)
			}
			total += n
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		n, err := s.repo.BulkInsert(ctx, batch)
		if err != nil {
			return fmt.Errorf("insert final seed batch: %w", err)
		}
		total += n
	}

	s.logger.Info("manse seed import finished",
		zap.String("job_id", task.ID), zap.String("file", filepath.Base(path)), zap.Int("inserted", total))
	return nil
}

// Seed rows: solar_date, lunar_date, season, season_start_time, leap_month,
// year_sky, year_ground, month_sky, month_ground, day_sky, day_ground.
func parseSeedRow(row []string) (models.ManseRecord, error) {
	rec := models.ManseRecord{
		SolarDate:   strings.TrimSpace(row[0]),
		LunarDate:   strings.TrimSpace(row[1]),
		YearSky:     strings.TrimSpace(row[5]),
		YearGround:  strings.TrimSpace(row[6]),
		MonthSky:    strings.TrimSpace(row[7]),
		MonthGround: strings.TrimSpace(row[8]),
		DaySky:      strings.TrimSpace(row[9]),
		DayGround:   strings.TrimSpace(row[10]),
	}
	if rec.SolarDate == "" || rec.DaySky == "" {
		return rec, fmt.Errorf("missing solar date or day stem")
	}

	if season := strings.TrimSpace(row[2]); season != "" {
		rec.Season = &season
	}
	if rawStart := strings.TrimSpace(row[3]); rawStart != "" {
		start, err := time.Parse(time.RFC3339, rawStart)
		if err != nil {
			return rec, fmt.Errorf("parse season start %q: %w", rawStart, err)
		}
		rec.SeasonStartTime = &start
	}
	if rawLeap := strings.TrimSpace(row[4]); rawLeap != "" {
		leap, err := strconv.Atoi(rawLeap)
		if err != nil {
			return rec, fmt.Errorf("parse leap month %q: %w", rawLeap, err)
		}
		rec.LeapMonth = leap
	}
	return rec, nil
}

// calendarProvider adapts the repository rows to the deriver's view.
type calendarProvider struct {
	repo manseCalendarRepo
}

func (p *calendarProvider) FindBySolarDate(ctx context.Context, date string) (*saju.Record, error) {
	rec, err := p.repo.FindBySolarDate(ctx, date)
	if err != nil || rec == nil {
		return nil, err
	}
	return toSajuRecord(rec), nil
}

func (p *calendarProvider) FindByLunarDate(ctx context.Context, date string) (*saju.Record, error) {
	rec, err := p.repo.FindByLunarDate(ctx, date)
	if err != nil || rec == nil {
		return nil, err
	}
	return toSajuRecord(rec), nil
}

func (p *calendarProvider) FindSeasonAfter(ctx context.Context, at time.Time) (*saju.Record, error) {
	rec, err := p.repo.FindSeasonAfter(ctx, at)
	if err != nil || rec == nil {
		return nil, err
	}
	return toSajuRecord(rec), nil
}

func (p *calendarProvider) FindSeasonBefore(ctx context.Context, at time.Time) (*saju.Record, error) {
	rec, err := p.repo.FindSeasonBefore(ctx, at)
	if err != nil || rec == nil {
		return nil, err
	}
	return toSajuRecord(rec), nil
}

func toSajuRecord(rec *models.ManseRecord) *saju.Record {
	out := &saju.Record{
		SolarDate:       rec.SolarDate,
		LunarDate:       rec.LunarDate,
		SeasonStartTime: rec.SeasonStartTime,
		LeapMonth:       rec.LeapMonth,
		YearSky:         rec.YearSky,
		YearGround:      rec.YearGround,
		MonthSky:        rec.MonthSky,
		MonthGround:     rec.MonthGround,
		DaySky:          rec.DaySky,
		DayGround:       rec.DayGround,
	}
	if rec.Season != nil {
		out.Season = *rec.Season
	}
	return out
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/crata-labs/crata-api/internal/dto"
	"github.com/crata-labs/crata-api/internal/models"
	"github.com/crata-labs/crata-api/internal/saju"
	appErrors "github.com/crata-labs/crata-api/pkg/errors"
)

type analyticsGroupRepo interface {
	FindByID(ctx context.Context, groupID int64) (*models.Group, error)
	ListChildren(ctx context.Context, parentID int64) ([]models.Group, error)
}

type analyticsTicketRepo interface {
	CountByGroup(ctx context.Context, groupID int64) (int, error)
}

type analyticsResultRepo interface {
	ListByGroup(ctx context.Context, groupID int64) ([]models.GroupResult, error)
}

// surveyDimension names one survey-scored behavioral dimension and its fixed
// type vocabulary, which shapes the zero-filled output distributions.
type surveyDimension struct {
	Name  string
	Types []string
}

var surveyDimensions = []surveyDimension{
	{Name: "selfDetermination", Types: []string{saju.DetermStandAlone, saju.DetermGroup}},
	{Name: "selfImprovement", Types: []string{saju.ImproveRival, saju.ImproveComparative}},
	{Name: saju.CategoryPurposeAchievement, Types: []string{"task", "relational"}},
	{Name: saju.CategoryInfoProcessing, Types: []string{"intuitive", "experiential"}},
	{Name: saju.CategoryAbilityExpression, Types: []string{"design", "technical"}},
	{Name: saju.CategoryGoalExecution, Types: []string{"tactical", "strategic"}},
}

// surveyCategoryMap routes an answer's category code to the dimension and
// type its score feeds.
var surveyCategoryMap = map[string]struct{ Dimension, Type string }{
	"CAT_STAND_ALONE":  {"selfDetermination", saju.DetermStandAlone},
	"CAT_GROUP":        {"selfDetermination", saju.DetermGroup},
	"CAT_RIVAL":        {"selfImprovement", saju.ImproveRival},
	"CAT_COMPARATIVE":  {"selfImprovement", saju.ImproveComparative},
	"CAT_TASK":         {saju.CategoryPurposeAchievement, "task"},
	"CAT_RELATIONAL":   {saju.CategoryPurposeAchievement, "relational"},
	"CAT_INTUITIVE":    {saju.CategoryInfoProcessing, "intuitive"},
	"CAT_EXPERIENTIAL": {saju.CategoryInfoProcessing, "experiential"},
	"CAT_DESIGN":       {saju.CategoryAbilityExpression, "design"},
	"CAT_TECHNICAL":    {saju.CategoryAbilityExpression, "technical"},
	"CAT_TACTICAL":     {saju.CategoryGoalExecution, "tactical"},
	"CAT_STRATEGIC":    {saju.CategoryGoalExecution, "strategic"},
}

func groupAnalyticsCacheKey(groupID int64) string {
	return fmt.Sprintf("analytics:group:%d", groupID)
}

func groupAnalyticsCachePattern(groupID int64) string {
	return fmt.Sprintf("analytics:group:%d*", groupID)
}

// GroupAnalyticsService aggregates stored snapshots and survey answers into
// per-group behavioral statistics.
type GroupAnalyticsService struct {
	groups  analyticsGroupRepo
	tickets analyticsTicketRepo
	results analyticsResultRepo
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewGroupAnalyticsService constructs a GroupAnalyticsService.
func NewGroupAnalyticsService(groups analyticsGroupRepo, tickets analyticsTicketRepo, results analyticsResultRepo, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *GroupAnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupAnalyticsService{
		groups:  groups,
		tickets: tickets,
		results: results,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// GetGroupAnalytics computes the full aggregation for one group.
func (s *GroupAnalyticsService) GetGroupAnalytics(ctx context.Context, groupID int64) (*dto.GroupAnalytics, error) {
	cacheKey := groupAnalyticsCacheKey(groupID)
	var cached dto.GroupAnalytics
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	group, total, results, err := s.loadGroupData(ctx, groupID)
	if err != nil {
		return nil, err
	}

	analytics := buildGroupAnalytics(group, total, results)
	_ = s.cache.Set(ctx, cacheKey, analytics, 0)
	return analytics, nil
}

// GetGroupMembers lists the completed respondents of a group with their
// per-member traits. typeFilter matches case-insensitively against any
// resolved trait value.
func (s *GroupAnalyticsService) GetGroupMembers(ctx context.Context, groupID int64, typeFilter string) (*dto.GroupMemberList, error) {
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return nil, err
	}
	results, err := s.results.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group results")
	}

	members := make([]dto.GroupMember, 0, len(results))
	needle := strings.ToLower(strings.TrimSpace(typeFilter))
	for _, res := range results {
		member := buildGroupMember(res)
		if needle != "" && !memberMatchesType(member, needle) {
			continue
		}
		members = append(members, member)
	}

	return &dto.GroupMemberList{Members: members, Total: len(members)}, nil
}

// GetSubGroups lists the direct children of a group.
func (s *GroupAnalyticsService) GetSubGroups(ctx context.Context, groupID int64) ([]dto.SubGroupSummary, error) {
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return nil, err
	}
	children, err := s.groups.ListChildren(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sub-groups")
	}

	out := make([]dto.SubGroupSummary, 0, len(children))
	for _, child := range children {
		out = append(out, dto.SubGroupSummary{
			GroupID:      child.GroupID,
			GroupName:    child.GroupName,
			TotalMembers: child.TicketCount,
		})
	}
	return out, nil
}

// GetSubGroupComparison aggregates each direct child and condenses the
// headline figures side by side.
func (s *GroupAnalyticsService) GetSubGroupComparison(ctx context.Context, groupID int64) (*dto.SubGroupComparison, error) {
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return nil, err
	}
	children, err := s.groups.ListChildren(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sub-groups")
	}
	if len(children) == 0 {
		return &dto.SubGroupComparison{SubGroups: []dto.SubGroupComparisonEntry{}, HasSubGroups: false}, nil
	}

	entries := make([]dto.SubGroupComparisonEntry, 0, len(children))
	for i := range children {
		child := &children[i]
		total, err := s.tickets.CountByGroup(ctx, child.GroupID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sub-group tickets")
		}
		results, err := s.results.ListByGroup(ctx, child.GroupID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sub-group results")
		}
		analytics := buildGroupAnalytics(child, total, results)
		entries = append(entries, dto.SubGroupComparisonEntry{
			GroupID:           analytics.GroupID,
			GroupName:         analytics.GroupName,
			TotalMembers:      analytics.TotalMembers,
			CompletedCount:    analytics.CompletedCount,
			CompletionRate:    analytics.CompletionRate,
			AverageScore:      analytics.OverallStats.AverageScore,
			StandardDeviation: analytics.OverallStats.StandardDeviation,
			TypeDistribution: dto.ComparisonTraits{
				MotivationLocation: analytics.BirthdayBased.MotivationLocation,
				SelfDetermination:  analytics.BirthdayBased.SelfDetermination,
				OrgStructure:       analytics.BirthdayBased.OrgStructure,
			},
			WorkStyleSummary: dto.ComparisonStyles{
				PurposeAchievement: analytics.BirthdayBased.WorkStyle.PurposeAchievement,
				InfoProcessing:     analytics.BirthdayBased.WorkStyle.InfoProcessing,
			},
		})
	}

	return &dto.SubGroupComparison{
		SubGroups:      entries,
		HasSubGroups:   true,
		TotalSubGroups: len(entries),
	}, nil
}

// SystemMetrics reports the instrumentation snapshot.
func (s *GroupAnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func (s *GroupAnalyticsService) findGroup(ctx context.Context, groupID int64) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

func (s *GroupAnalyticsService) loadGroupData(ctx context.Context, groupID int64) (*models.Group, int, []models.GroupResult, error) {
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, 0, nil, err
	}
	total, err := s.tickets.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, 0, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count group tickets")
	}
	results, err := s.results.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, 0, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group results")
	}
	return group, total, results, nil
}

// buildGroupAnalytics is the pure aggregation core. completed counts stored
// result rows, not consumed tickets: a ticket burned on a submission whose
// result never landed must not inflate the completion figures or the share
// denominators below them.
func buildGroupAnalytics(group *models.Group, total int, results []models.GroupResult) *dto.GroupAnalytics {
	analytics := emptyGroupAnalytics(group)
	completed := len(results)
	analytics.TotalMembers = total
	analytics.CompletedCount = completed
	if total > 0 {
		analytics.CompletionRate = int(math.Round(float64(completed) / float64(total) * 100))
	}
	if len(results) == 0 {
		return analytics
	}

	counts := newTraitCounts()
	dominantCounts := make(map[string]map[string]int, len(surveyDimensions))
	for _, dim := range surveyDimensions {
		dominantCounts[dim.Name] = make(map[string]int, len(dim.Types))
	}
	potential := map[string]*potentialAccumulator{}
	var allScores []int

	for i := range results {
		res := &results[i]
		if snap := res.Snapshot.Manse; snap != nil {
			counts.add(snap)
		}

		dominant := extractSurveyTypes(res.Answers.AnswerList)
		for dim, typ := range dominant {
			dominantCounts[dim][typ]++
		}
		allScores = append(allScores, mappedScores(res.Answers.AnswerList)...)
		accumulatePotential(potential, res.Answers.AnswerList)
	}

	counts.fill(&analytics.BirthdayBased, completed)

	analytics.SurveyBased.GroupBehavior = dto.GroupBehavior{
		SelfDetermination: dominantDistribution(dominantCounts["selfDetermination"], surveyDimensions[0].Types, completed),
		SelfImprovement:   dominantDistribution(dominantCounts["selfImprovement"], surveyDimensions[1].Types, completed),
	}
	analytics.SurveyBased.WorkStyle = dto.WorkStyleDist{
		PurposeAchievement: dominantDistribution(dominantCounts[saju.CategoryPurposeAchievement], surveyDimensions[2].Types, completed),
		InfoProcessing:     dominantDistribution(dominantCounts[saju.CategoryInfoProcessing], surveyDimensions[3].Types, completed),
		AbilityExpression:  dominantDistribution(dominantCounts[saju.CategoryAbilityExpression], surveyDimensions[4].Types, completed),
		GoalExecution:      dominantDistribution(dominantCounts[saju.CategoryGoalExecution], surveyDimensions[5].Types, completed),
	}
	analytics.SurveyBased.PotentialScores = finishPotential(potential)
	analytics.OverallStats = overallStats(allScores)

	return analytics
}

// extractSurveyTypes sums per-type scores from the mapped categories, then
// picks the dominant type per dimension with a strict greater-than fold over
// the types in answer order, so ties keep the type encountered first.
func extractSurveyTypes(answers models.AnswerList) map[string]string {
	sums := make(map[string]map[string]int)
	seen := make(map[string][]string)
	for _, a := range answers {
		mapping, ok := surveyCategoryMap[a.CategoryID]
		if !ok {
			continue
		}
		typeSums := sums[mapping.Dimension]
		if typeSums == nil {
			typeSums = make(map[string]int)
			sums[mapping.Dimension] = typeSums
		}
		if _, counted := typeSums[mapping.Type]; !counted {
			seen[mapping.Dimension] = append(seen[mapping.Dimension], mapping.Type)
		}
		typeSums[mapping.Type] += a.Score
	}

	dominant := make(map[string]string, len(sums))
	for dim, types := range seen {
		best, bestScore := types[0], sums[dim][types[0]]
		for _, typ := range types[1:] {
			if score := sums[dim][typ]; score > bestScore {
				best, bestScore = typ, score
			}
		}
		dominant[dim] = best
	}
	return dominant
}

func mappedScores(answers models.AnswerList) []int {
	var scores []int
	for _, a := range answers {
		if _, ok := surveyCategoryMap[a.CategoryID]; ok {
			scores = append(scores, a.Score)
		}
	}
	return scores
}

type potentialAccumulator struct {
	Sum          int
	Count        int
	Distribution [5]int
}

// Potential-competency answers are recognised by category naming and grouped
// by their parent category. Answers without a parent share the empty key.
func accumulatePotential(acc map[string]*potentialAccumulator, answers models.AnswerList) {
	for _, a := range answers {
		if !strings.Contains(a.CategoryName, "잠재") && !strings.Contains(a.CategoryID, "POTENTIAL") {
			continue
		}
		key := a.ParentID
		bucket := acc[key]
		if bucket == nil {
			bucket = &potentialAccumulator{}
			acc[key] = bucket
		}
		bucket.Sum += a.Score
		bucket.Count++
		idx := a.Score / 20
		if idx > 4 {
			idx = 4
		}
		if idx < 0 {
			idx = 0
		}
		bucket.Distribution[idx]++
	}
}

func finishPotential(acc map[string]*potentialAccumulator) map[string]dto.PotentialScore {
	out := make(map[string]dto.PotentialScore, len(acc))
	for key, bucket := range acc {
		score := dto.PotentialScore{Distribution: bucket.Distribution[:]}
		if bucket.Count > 0 {
			score.Average = float64(bucket.Sum) / float64(bucket.Count)
		}
		out[key] = score
	}
	return out
}

// overallStats computes mean and population standard deviation, both rounded
// to two decimals.
func overallStats(scores []int) dto.OverallStats {
	if len(scores) == 0 {
		return dto.OverallStats{}
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		diff := float64(s) - mean
		variance += diff * diff
	}
	variance /= float64(len(scores))

	return dto.OverallStats{
		AverageScore:      math.Round(mean*100) / 100,
		StandardDeviation: math.Round(math.Sqrt(variance)*100) / 100,
	}
}

// traitCounts accumulates snapshot-derived trait occurrences. Composite
// "both" values count into both underlying buckets.
type traitCounts struct {
	location    map[string]int
	orientation map[string]int
	org         map[string]int
	determ      map[string]int
	improve     map[string]int
	workStyle   map[string]map[string]int
}

func newTraitCounts() *traitCounts {
	return &traitCounts{
		location:    map[string]int{},
		orientation: map[string]int{},
		org:         map[string]int{},
		determ:      map[string]int{},
		improve:     map[string]int{},
		workStyle: map[string]map[string]int{
			saju.CategoryPurposeAchievement: {},
			saju.CategoryInfoProcessing:     {},
			saju.CategoryAbilityExpression:  {},
			saju.CategoryGoalExecution:      {},
		},
	}
}

func (c *traitCounts) add(snap *saju.Snapshot) {
	if snap.MotivationLocation != "" {
		c.location[snap.MotivationLocation]++
	}
	if snap.MotivationOrientation != "" {
		c.orientation[snap.MotivationOrientation]++
	}

	switch snap.OrgStructure {
	case saju.OrgSelfGrowth, saju.OrgGroupGrowth:
		c.org[snap.OrgStructure]++
	case saju.OrgBoth:
		c.org[saju.OrgSelfGrowth]++
		c.org[saju.OrgGroupGrowth]++
	}

	switch snap.SelfDetermination {
	case saju.DetermStandAlone, saju.DetermGroup:
		c.determ[snap.SelfDetermination]++
	case saju.DetermBoth:
		c.determ[saju.DetermStandAlone]++
		c.determ[saju.DetermGroup]++
	}

	switch snap.SelfImprovement {
	case saju.ImproveRival, saju.ImproveComparative:
		c.improve[snap.SelfImprovement]++
	case saju.ImproveBoth:
		c.improve[saju.ImproveRival]++
		c.improve[saju.ImproveComparative]++
	}

	for _, typ := range snap.WorkStyle.PurposeAchievement {
		c.workStyle[saju.CategoryPurposeAchievement][typ]++
	}
	for _, typ := range snap.WorkStyle.InfoProcessing {
		c.workStyle[saju.CategoryInfoProcessing][typ]++
	}
	for _, typ := range snap.WorkStyle.AbilityExpression {
		c.workStyle[saju.CategoryAbilityExpression][typ]++
	}
	for _, typ := range snap.WorkStyle.GoalExecution {
		c.workStyle[saju.CategoryGoalExecution][typ]++
	}
}

func (c *traitCounts) fill(dest *dto.BirthdayBased, completed int) {
	dest.MotivationLocation = dto.TypeDistribution{
		saju.MotivationInternal: toTypeCount(c.location[saju.MotivationInternal], completed),
		saju.MotivationExternal: toTypeCount(c.location[saju.MotivationExternal], completed),
	}
	dest.MotivationOrientation = dto.MotivationOrientationDist{
		Growth:       toTypeCount(c.orientation[saju.OrientGrowth], completed),
		Divergence:   toTypeCount(c.orientation[saju.OrientDivergence], completed),
		Balance:      toTypeCount(c.orientation[saju.OrientBalance], completed),
		Harvest:      toTypeCount(c.orientation[saju.OrientHarvest], completed),
		Accumulation: toTypeCount(c.orientation[saju.OrientAccumulation], completed),
	}
	dest.OrgStructure = dto.TypeDistribution{
		saju.OrgSelfGrowth:  toTypeCount(c.org[saju.OrgSelfGrowth], completed),
		saju.OrgGroupGrowth: toTypeCount(c.org[saju.OrgGroupGrowth], completed),
	}
	dest.SelfDetermination = dto.TypeDistribution{
		saju.DetermStandAlone: toTypeCount(c.determ[saju.DetermStandAlone], completed),
		saju.DetermGroup:      toTypeCount(c.determ[saju.DetermGroup], completed),
	}
	dest.SelfImprovement = dto.TypeDistribution{
		saju.ImproveRival:       toTypeCount(c.improve[saju.ImproveRival], completed),
		saju.ImproveComparative: toTypeCount(c.improve[saju.ImproveComparative], completed),
	}
	dest.WorkStyle = dto.WorkStyleDist{
		PurposeAchievement: styleDistribution(c.workStyle[saju.CategoryPurposeAchievement], []string{"task", "relational"}, completed),
		InfoProcessing:     styleDistribution(c.workStyle[saju.CategoryInfoProcessing], []string{"intuitive", "experiential"}, completed),
		AbilityExpression:  styleDistribution(c.workStyle[saju.CategoryAbilityExpression], []string{"design", "technical"}, completed),
		GoalExecution:      styleDistribution(c.workStyle[saju.CategoryGoalExecution], []string{"tactical", "strategic"}, completed),
	}
}

func styleDistribution(counts map[string]int, types []string, completed int) dto.TypeDistribution {
	dist := make(dto.TypeDistribution, len(types))
	for _, typ := range types {
		dist[typ] = toTypeCount(counts[typ], completed)
	}
	return dist
}

func dominantDistribution(counts map[string]int, types []string, completed int) dto.TypeDistribution {
	dist := make(dto.TypeDistribution, len(types))
	for _, typ := range types {
		dist[typ] = toTypeCount(counts[typ], completed)
	}
	return dist
}

func toTypeCount(count, completed int) dto.TypeCount {
	tc := dto.TypeCount{Count: count}
	if completed > 0 {
		tc.Percentage = int(math.Round(float64(count) / float64(completed) * 100))
	}
	return tc
}

func emptyGroupAnalytics(group *models.Group) *dto.GroupAnalytics {
	counts := newTraitCounts()
	analytics := &dto.GroupAnalytics{
		GroupID:   group.GroupID,
		GroupName: group.GroupName,
	}
	counts.fill(&analytics.BirthdayBased, 0)
	analytics.SurveyBased = dto.SurveyBased{
		GroupBehavior: dto.GroupBehavior{
			SelfDetermination: dominantDistribution(nil, surveyDimensions[0].Types, 0),
			SelfImprovement:   dominantDistribution(nil, surveyDimensions[1].Types, 0),
		},
		WorkStyle: dto.WorkStyleDist{
			PurposeAchievement: dominantDistribution(nil, surveyDimensions[2].Types, 0),
			InfoProcessing:     dominantDistribution(nil, surveyDimensions[3].Types, 0),
			AbilityExpression:  dominantDistribution(nil, surveyDimensions[4].Types, 0),
			GoalExecution:      dominantDistribution(nil, surveyDimensions[5].Types, 0),
		},
		PotentialScores: map[string]dto.PotentialScore{},
	}
	return analytics
}

func buildGroupMember(res models.GroupResult) dto.GroupMember {
	member := dto.GroupMember{
		ClientName:  res.ClientName,
		CompletedAt: res.CreatedAt,
		SurveyTypes: extractSurveyTypes(res.Answers.AnswerList),
	}
	if res.TicketID != nil {
		member.TicketID = *res.TicketID
	}
	if res.TicketUsedAt != nil {
		member.CompletedAt = *res.TicketUsedAt
	}
	if snap := res.Snapshot.Manse; snap != nil {
		member.BirthdayTypes = dto.MemberTraits{
			MotivationLocation:    snap.MotivationLocation,
			MotivationOrientation: snap.MotivationOrientation,
			OrgStructure:          snap.OrgStructure,
			SelfDetermination:     snap.SelfDetermination,
			SelfImprovement:       snap.SelfImprovement,
		}
	}
	return member
}

func memberMatchesType(member dto.GroupMember, needle string) bool {
	values := []string{
		member.BirthdayTypes.MotivationLocation,
		member.BirthdayTypes.MotivationOrientation,
		member.BirthdayTypes.OrgStructure,
		member.BirthdayTypes.SelfDetermination,
		member.BirthdayTypes.SelfImprovement,
	}
	for _, typ := range member.SurveyTypes {
		values = append(values, typ)
	}
	for _, v := range values {
		if v != "" && strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

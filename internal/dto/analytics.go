package dto

import "time"

// TypeCount is one trait bucket: absolute count plus share of completed
// respondents. Shares are computed against the completed count, so traits
// with dual membership ("both"-valued composites feed two buckets) may sum
// past 100% across a pair.
type TypeCount struct {
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// TypeDistribution maps type labels to counts.
type TypeDistribution map[string]TypeCount

// MotivationOrientationDist covers the five orientation categories.
type MotivationOrientationDist struct {
	Growth       TypeCount `json:"growth"`
	Divergence   TypeCount `json:"divergence"`
	Balance      TypeCount `json:"balance"`
	Harvest      TypeCount `json:"harvest"`
	Accumulation TypeCount `json:"accumulation"`
}

// WorkStyleDist groups the four work-style category distributions.
type WorkStyleDist struct {
	PurposeAchievement TypeDistribution `json:"purposeAchievement"`
	InfoProcessing     TypeDistribution `json:"infoProcessing"`
	AbilityExpression  TypeDistribution `json:"abilityExpression"`
	GoalExecution      TypeDistribution `json:"goalExecution"`
}

// BirthdayBased holds the distributions derived from the stored snapshots.
type BirthdayBased struct {
	MotivationLocation    TypeDistribution          `json:"motivationLocation"`
	MotivationOrientation MotivationOrientationDist `json:"motivationOrientation"`
	OrgStructure          TypeDistribution          `json:"orgStructure"`
	SelfDetermination     TypeDistribution          `json:"selfDetermination"`
	SelfImprovement       TypeDistribution          `json:"selfImprovement"`
	WorkStyle             WorkStyleDist             `json:"workStyle"`
}

// GroupBehavior holds the survey-derived group-behavior distributions.
type GroupBehavior struct {
	SelfDetermination TypeDistribution `json:"selfDetermination"`
	SelfImprovement   TypeDistribution `json:"selfImprovement"`
}

// PotentialScore summarises one potential-competency category.
type PotentialScore struct {
	Average      float64 `json:"average"`
	Distribution []int   `json:"distribution"`
}

// SurveyBased holds the distributions derived from raw answers.
type SurveyBased struct {
	GroupBehavior   GroupBehavior             `json:"groupBehavior"`
	WorkStyle       WorkStyleDist             `json:"workStyle"`
	PotentialScores map[string]PotentialScore `json:"potentialScores"`
}

// OverallStats carries mean and population standard deviation over all
// classifiable answer scores, rounded to two decimals.
type OverallStats struct {
	AverageScore      float64 `json:"averageScore"`
	StandardDeviation float64 `json:"standardDeviation"`
}

// GroupAnalytics is the full aggregation for one group.
type GroupAnalytics struct {
	GroupID        int64         `json:"groupId"`
	GroupName      string        `json:"groupName"`
	TotalMembers   int           `json:"totalMembers"`
	CompletedCount int           `json:"completedCount"`
	CompletionRate int           `json:"completionRate"`
	BirthdayBased  BirthdayBased `json:"birthdayBased"`
	SurveyBased    SurveyBased   `json:"surveyBased"`
	OverallStats   OverallStats  `json:"overallStats"`
}

// GroupMember is one completed respondent in the member listing.
type GroupMember struct {
	TicketID      string            `json:"ticketId,omitempty"`
	ClientName    string            `json:"clientName"`
	CompletedAt   time.Time         `json:"completedAt"`
	BirthdayTypes MemberTraits      `json:"birthdayTypes"`
	SurveyTypes   map[string]string `json:"surveyTypes"`
}

// MemberTraits is the snapshot trait summary shown per member.
type MemberTraits struct {
	MotivationLocation    string `json:"motivationLocation,omitempty"`
	MotivationOrientation string `json:"motivationOrientation,omitempty"`
	OrgStructure          string `json:"orgStructure,omitempty"`
	SelfDetermination     string `json:"selfDetermination,omitempty"`
	SelfImprovement       string `json:"selfImprovement,omitempty"`
}

// GroupMemberList wraps the member listing.
type GroupMemberList struct {
	Members []GroupMember `json:"members"`
	Total   int           `json:"total"`
}

// SubGroupSummary is one child group in the sub-group listing.
type SubGroupSummary struct {
	GroupID      int64  `json:"groupId"`
	GroupName    string `json:"groupName"`
	TotalMembers int    `json:"totalMembers"`
}

// SubGroupComparisonEntry condenses one child group's aggregation.
type SubGroupComparisonEntry struct {
	GroupID           int64            `json:"groupId"`
	GroupName         string           `json:"groupName"`
	TotalMembers      int              `json:"totalMembers"`
	CompletedCount    int              `json:"completedCount"`
	CompletionRate    int              `json:"completionRate"`
	AverageScore      float64          `json:"averageScore"`
	StandardDeviation float64          `json:"standardDeviation"`
	TypeDistribution  ComparisonTraits `json:"typeDistribution"`
	WorkStyleSummary  ComparisonStyles `json:"workStyleSummary"`
}

// ComparisonTraits picks the headline trait distributions for comparison.
type ComparisonTraits struct {
	MotivationLocation TypeDistribution `json:"motivationLocation"`
	SelfDetermination  TypeDistribution `json:"selfDetermination"`
	OrgStructure       TypeDistribution `json:"orgStructure"`
}

// ComparisonStyles picks the headline work-style distributions.
type ComparisonStyles struct {
	PurposeAchievement TypeDistribution `json:"purposeAchievement"`
	InfoProcessing     TypeDistribution `json:"infoProcessing"`
}

// SubGroupComparison is the flat comparison across a parent's children.
type SubGroupComparison struct {
	SubGroups      []SubGroupComparisonEntry `json:"subGroups"`
	HasSubGroups   bool                      `json:"hasSubGroups"`
	TotalSubGroups int                       `json:"totalSubGroups,omitempty"`
}

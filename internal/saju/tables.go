package saju

// The ten heavenly stems and twelve earthly branches in cycle order, keyed
// throughout by their Korean glyphs (the form stored in the manse table).
var (
	stems    = []string{"갑", "을", "병", "정", "무", "기", "경", "신", "임", "계"}
	branches = []string{"자", "축", "인", "묘", "진", "사", "오", "미", "신", "유", "술", "해"}
)

var stemIndex = map[string]int{
	"갑": 0, "을": 1, "병": 2, "정": 3, "무": 4,
	"기": 5, "경": 6, "신": 7, "임": 8, "계": 9,
}

// Ten-star relational labels.
const (
	StarBigyeon  = "비견"
	StarGeopjae  = "겁재"
	StarSiksin   = "식신"
	StarSanggwan = "상관"
	StarPyeonjae = "편재"
	StarJeongjae = "정재"
	StarPyeongwan = "편관"
	StarJeonggwan = "정관"
	StarPyeonin  = "편인"
	StarJeongin  = "정인"
)

// tenStarTable maps (day stem, target stem) to the relational ten-star label.
// Kept as a closed enumerated table rather than recomputed from element
// cycles; the published mapping is the contract.
var tenStarTable = map[string]map[string]string{
	"갑": {"갑": StarBigyeon, "을": StarGeopjae, "병": StarSiksin, "정": StarSanggwan, "무": StarPyeonjae, "기": StarJeongjae, "경": StarPyeongwan, "신": StarJeonggwan, "임": StarPyeonin, "계": StarJeongin},
	"을": {"갑": StarGeopjae, "을": StarBigyeon, "병": StarSanggwan, "정": StarSiksin, "무": StarJeongjae, "기": StarPyeonjae, "경": StarJeonggwan, "신": StarPyeongwan, "임": StarJeongin, "계": StarPyeonin},
	"병": {"갑": StarPyeonin, "을": StarJeongin, "병": StarBigyeon, "정": StarGeopjae, "무": StarSiksin, "기": StarSanggwan, "경": StarPyeonjae, "신": StarJeongjae, "임": StarPyeongwan, "계": StarJeonggwan},
	"정": {"갑": StarJeongin, "을": StarPyeonin, "병": StarGeopjae, "정": StarBigyeon, "무": StarSanggwan, "기": StarSiksin, "경": StarJeongjae, "신": StarPyeonjae, "임": StarJeonggwan, "계": StarPyeongwan},
	"무": {"갑": StarPyeongwan, "을": StarJeonggwan, "병": StarPyeonin, "정": StarJeongin, "무": StarBigyeon, "기": StarGeopjae, "경": StarSiksin, "신": StarSanggwan, "임": StarPyeonjae, "계": StarJeongjae},
	"기": {"갑": StarJeonggwan, "을": StarPyeongwan, "병": StarJeongin, "정": StarPyeonin, "무": StarGeopjae, "기": StarBigyeon, "경": StarSanggwan, "신": StarSiksin, "임": StarJeongjae, "계": StarPyeonjae},
	"경": {"갑": StarPyeonjae, "을": StarJeongjae, "병": StarPyeongwan, "정": StarJeonggwan, "무": StarPyeonin, "기": StarJeongin, "경": StarBigyeon, "신": StarGeopjae, "임": StarSiksin, "계": StarSanggwan},
	"신": {"갑": StarJeongjae, "을": StarPyeonjae, "병": StarJeonggwan, "정": StarPyeongwan, "무": StarJeongin, "기": StarPyeonin, "경": StarGeopjae, "신": StarBigyeon, "임": StarSanggwan, "계": StarSiksin},
	"임": {"갑": StarSiksin, "을": StarSanggwan, "병": StarPyeonjae, "정": StarJeongjae, "무": StarPyeongwan, "기": StarJeonggwan, "경": StarPyeonin, "신": StarJeongin, "임": StarBigyeon, "계": StarGeopjae},
	"계": {"갑": StarSanggwan, "을": StarSiksin, "병": StarJeongjae, "정": StarPyeonjae, "무": StarJeonggwan, "기": StarPyeongwan, "경": StarJeongin, "신": StarPyeonin, "임": StarGeopjae, "계": StarBigyeon},
}

// branchPrincipalStem maps each earthly branch to its principal hidden stem,
// through which a branch receives its ten-star label.
var branchPrincipalStem = map[string]string{
	"자": "계", "축": "기", "인": "갑", "묘": "을",
	"진": "무", "사": "병", "오": "정", "미": "기",
	"신": "경", "유": "신", "술": "무", "해": "임",
}

// Trait vocabulary for the behavioral classifier.
const (
	MotivationInternal = "internal"
	MotivationExternal = "external"

	OrientGrowth       = "growth"
	OrientDivergence   = "divergence"
	OrientBalance      = "balance"
	OrientHarvest      = "harvest"
	OrientAccumulation = "accumulation"

	OrgSelfGrowth  = "selfGrowth"
	OrgGroupGrowth = "groupGrowth"
	OrgBoth        = "both"

	DetermStandAlone = "standAlone"
	DetermGroup      = "group"
	DetermBoth       = "both"

	ImproveRival       = "rival"
	ImproveComparative = "comparative"
	ImproveBoth        = "both"

	CategoryPurposeAchievement = "purposeAchievement"
	CategoryInfoProcessing     = "infoProcessing"
	CategoryAbilityExpression  = "abilityExpression"
	CategoryGoalExecution      = "goalExecution"
)

type dayStemTraits struct {
	MotivationLocation    string
	MotivationOrientation string
}

// dayStemTable fixes the motivation pair per day stem: location alternates
// internal/external, orientation cycles through the five categories two
// stems at a time.
var dayStemTable = map[string]dayStemTraits{
	"갑": {MotivationInternal, OrientGrowth},
	"을": {MotivationExternal, OrientGrowth},
	"병": {MotivationInternal, OrientDivergence},
	"정": {MotivationExternal, OrientDivergence},
	"무": {MotivationInternal, OrientBalance},
	"기": {MotivationExternal, OrientBalance},
	"경": {MotivationInternal, OrientHarvest},
	"신": {MotivationExternal, OrientHarvest},
	"임": {MotivationInternal, OrientAccumulation},
	"계": {MotivationExternal, OrientAccumulation},
}

// Ten-star group partition used by the classifier.
var tenStarGroups = map[string][]string{
	"top":    {StarJeonggwan, StarPyeongwan},
	"left":   {StarPyeonin, StarJeongin},
	"right":  {StarSanggwan, StarSiksin},
	"bottom": {StarPyeonjae, StarJeongjae},
	"size":   {StarBigyeon, StarGeopjae},
}

type workStyleMapping struct {
	Category string
	Type     string
}

var workStyleTable = map[string]workStyleMapping{
	StarJeonggwan: {CategoryPurposeAchievement, "task"},
	StarPyeongwan: {CategoryPurposeAchievement, "relational"},
	StarJeongin:   {CategoryInfoProcessing, "intuitive"},
	StarPyeonin:   {CategoryInfoProcessing, "experiential"},
	StarSanggwan:  {CategoryAbilityExpression, "design"},
	StarSiksin:    {CategoryAbilityExpression, "technical"},
	StarJeongjae:  {CategoryGoalExecution, "tactical"},
	StarPyeonjae:  {CategoryGoalExecution, "strategic"},
}

type orgFlags struct {
	Top, Right, Bottom, Left bool
}

// The orgStructure rule is an irregular enumeration over presence flags, not
// a closed-form formula. The tuple lists below are the behaviour; do not
// simplify the boolean algebra.
var orgGroupGrowthTuples = []orgFlags{
	{Top: true},
	{Bottom: true},
	{Top: true, Bottom: true},
	{Top: true, Right: true, Bottom: true},
	{Top: true, Bottom: true, Left: true},
}

var orgSelfGrowthTuples = []orgFlags{
	{Right: true},
	{Left: true},
	{Right: true, Left: true},
	{Right: true, Bottom: true, Left: true},
	{Top: true, Right: true, Left: true},
}

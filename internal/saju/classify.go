package saju

// WorkStyle maps the four fixed work-style categories to ordered type sets.
// A category never accumulates more than two distinct types; order follows
// first occurrence in the respondent's ten-star list.
type WorkStyle struct {
	PurposeAchievement []string `json:"purposeAchievement"`
	InfoProcessing     []string `json:"infoProcessing"`
	AbilityExpression  []string `json:"abilityExpression"`
	GoalExecution      []string `json:"goalExecution"`
}

// Snapshot is the frozen behavioral classification for one respondent.
// Every field derives purely from the day stem and ten-star list; empty
// strings mark traits that could not be resolved.
type Snapshot struct {
	DayStem               string    `json:"dayStem"`
	MotivationLocation    string    `json:"motivationLocation,omitempty"`
	MotivationOrientation string    `json:"motivationOrientation,omitempty"`
	OrgStructure          string    `json:"orgStructure,omitempty"`
	SelfDetermination     string    `json:"selfDetermination,omitempty"`
	SelfImprovement       string    `json:"selfImprovement,omitempty"`
	WorkStyle             WorkStyle `json:"workStyle"`
	TenStars              []string  `json:"tenStars"`
	Saju                  *Result   `json:"saju,omitempty"`
}

// TenStarList extracts the six classification ten-stars from a derived
// chart, in the fixed order the classifier expects: day/month/year grounds
// first, then day/month/year skies. Hour pillars never participate.
func TenStarList(res *Result) []string {
	if res == nil {
		return nil
	}
	ordered := []*Star{
		res.DayGround, res.MonthGround, res.YearGround,
		res.DaySky, res.MonthSky, res.YearSky,
	}
	stars := make([]string, 0, len(ordered))
	for _, s := range ordered {
		if s != nil && s.TenStar != "" {
			stars = append(stars, s.TenStar)
		}
	}
	return stars
}

// Classify maps a day stem and ten-star list to the behavioral traits.
// Unknown glyphs degrade to empty fields rather than failing; one bad
// respondent must never abort a group aggregation.
func Classify(daySky string, tenStars []string) *Snapshot {
	snap := &Snapshot{
		DayStem:  daySky,
		TenStars: tenStars,
		WorkStyle: WorkStyle{
			PurposeAchievement: []string{},
			InfoProcessing:     []string{},
			AbilityExpression:  []string{},
			GoalExecution:      []string{},
		},
	}
	if tenStars == nil {
		snap.TenStars = []string{}
	}

	if traits, ok := dayStemTable[daySky]; ok {
		snap.MotivationLocation = traits.MotivationLocation
		snap.MotivationOrientation = traits.MotivationOrientation
	}

	counts := countByGroup(tenStars)
	snap.OrgStructure = classifyOrgStructure(orgFlags{
		Top:    counts["top"] > 0,
		Right:  counts["right"] > 0,
		Bottom: counts["bottom"] > 0,
		Left:   counts["left"] > 0,
	})
	snap.SelfDetermination = classifySelfDetermination(counts["size"])
	snap.SelfImprovement = classifySelfImprovement(tenStars)
	applyWorkStyle(&snap.WorkStyle, tenStars)

	return snap
}

// BuildSnapshot classifies a derived chart and embeds it.
func BuildSnapshot(res *Result) *Snapshot {
	if res == nil || res.DaySky == nil {
		return nil
	}
	snap := Classify(res.DaySky.Korean, TenStarList(res))
	snap.Saju = res
	return snap
}

func countByGroup(tenStars []string) map[string]int {
	counts := make(map[string]int, len(tenStarGroups))
	for name, members := range tenStarGroups {
		for _, star := range tenStars {
			if star == members[0] || star == members[1] {
				counts[name]++
			}
		}
	}
	return counts
}

func classifyOrgStructure(flags orgFlags) string {
	if !flags.Top && !flags.Right && !flags.Bottom && !flags.Left {
		return ""
	}
	for _, t := range orgGroupGrowthTuples {
		if flags == t {
			return OrgGroupGrowth
		}
	}
	for _, t := range orgSelfGrowthTuples {
		if flags == t {
			return OrgSelfGrowth
		}
	}
	return OrgBoth
}

// classifySelfDetermination applies the colorSize rule: the size-group count
// plus one for the respondent themselves.
func classifySelfDetermination(sizeCount int) string {
	colorSize := sizeCount + 1
	switch {
	case colorSize < 4:
		return DetermStandAlone
	case colorSize == 4:
		return DetermBoth
	default:
		return DetermGroup
	}
}

func classifySelfImprovement(tenStars []string) string {
	hasBigyeon, hasGeopjae := false, false
	for _, star := range tenStars {
		switch star {
		case StarBigyeon:
			hasBigyeon = true
		case StarGeopjae:
			hasGeopjae = true
		}
	}
	switch {
	case hasBigyeon && hasGeopjae:
		return ImproveBoth
	case hasBigyeon:
		return ImproveRival
	case hasGeopjae:
		return ImproveComparative
	default:
		return ""
	}
}

func applyWorkStyle(ws *WorkStyle, tenStars []string) {
	for _, star := range tenStars {
		mapping, ok := workStyleTable[star]
		if !ok {
			continue
		}
		switch mapping.Category {
		case CategoryPurposeAchievement:
			ws.PurposeAchievement = appendUnique(ws.PurposeAchievement, mapping.Type)
		case CategoryInfoProcessing:
			ws.InfoProcessing = appendUnique(ws.InfoProcessing, mapping.Type)
		case CategoryAbilityExpression:
			ws.AbilityExpression = appendUnique(ws.AbilityExpression, mapping.Type)
		case CategoryGoalExecution:
			ws.GoalExecution = appendUnique(ws.GoalExecution, mapping.Type)
		}
	}
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

package saju

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Calendar types accepted by the deriver.
const (
	CalendarSolar = "SOLAR"
	CalendarLunar = "LUNAR"
)

// ErrRecordNotFound signals that the reference table has no row for the
// requested date. The table is seeded out of band; a missing row is fatal to
// the single derivation, never defaulted around.
var ErrRecordNotFound = errors.New("calendrical record not found")

// Record is one calendrical reference row as seen by the deriver.
type Record struct {
	SolarDate       string
	LunarDate       string
	Season          string
	SeasonStartTime *time.Time
	LeapMonth       int
	YearSky         string
	YearGround      string
	MonthSky        string
	MonthGround     string
	DaySky          string
	DayGround       string
}

// Provider is the narrow lookup interface over the seeded reference table.
// Lookups may incur I/O; everything downstream of them is pure computation.
type Provider interface {
	FindBySolarDate(ctx context.Context, date string) (*Record, error)
	FindByLunarDate(ctx context.Context, date string) (*Record, error)
	FindSeasonAfter(ctx context.Context, at time.Time) (*Record, error)
	FindSeasonBefore(ctx context.Context, at time.Time) (*Record, error)
}

// Input identifies one birth instant.
type Input struct {
	Gender       string
	BirthdayType string
	Birthday     string
	Time         *string
}

// Star is one stem or branch occupying a pillar position, with its ten-star
// relation to the day stem.
type Star struct {
	Korean  string `json:"korean"`
	TenStar string `json:"tenStar,omitempty"`
}

// Result holds the four derived pillars plus normalized input metadata.
// Hour pillars are nil when the birth time is unknown.
type Result struct {
	Gender       string  `json:"gender"`
	BirthdayType string  `json:"birthdayType"`
	Birthday     string  `json:"birthday"`
	Time         *string `json:"time"`

	SolarDate string `json:"solarDate"`
	LunarDate string `json:"lunarDate"`
	LeapMonth int    `json:"leapMonth"`

	Season          string     `json:"season,omitempty"`
	SeasonStartTime *time.Time `json:"seasonStartTime,omitempty"`

	// The governing term's window closes where the next term begins. Only
	// populated when a birth time allows intra-day term resolution.
	NextSeason          string     `json:"nextSeason,omitempty"`
	NextSeasonStartTime *time.Time `json:"nextSeasonStartTime,omitempty"`

	YearSky     *Star `json:"yearSky"`
	YearGround  *Star `json:"yearGround"`
	MonthSky    *Star `json:"monthSky"`
	MonthGround *Star `json:"monthGround"`
	DaySky      *Star `json:"daySky"`
	DayGround   *Star `json:"dayGround"`
	HourSky     *Star `json:"hourSky,omitempty"`
	HourGround  *Star `json:"hourGround,omitempty"`
}

// Deriver computes four-pillar charts from birth data through a Provider.
type Deriver struct {
	provider Provider
}

// NewDeriver constructs a Deriver.
func NewDeriver(provider Provider) *Deriver {
	return &Deriver{provider: provider}
}

// NormalizeBirthday reformats an 8-digit compact date to hyphenated form.
// Already-hyphenated input passes through untouched.
func NormalizeBirthday(raw string) string {
	if len(raw) == 8 {
		return raw[0:4] + "-" + raw[4:6] + "-" + raw[6:8]
	}
	return raw
}

// NormalizeTime canonicalises a birth time to HH:mm. Compact HHmm and
// 3-digit Hmm forms are accepted; anything unparseable or out of range
// yields nil, which downgrades the derivation to "time unknown".
func NormalizeTime(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	trimmed := strings.ReplaceAll(*raw, ":", "")
	if len(trimmed) == 3 {
		trimmed = "0" + trimmed
	}
	if len(trimmed) != 4 {
		return nil
	}
	hours, err := strconv.Atoi(trimmed[0:2])
	if err != nil {
		return nil
	}
	minutes, err := strconv.Atoi(trimmed[2:4])
	if err != nil {
		return nil
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return nil
	}
	normalized := trimmed[0:2] + ":" + trimmed[2:4]
	return &normalized
}

// Derive resolves the four pillars for the given birth data. Up to four
// provider lookups are made: the day row, plus backward/forward season
// boundary rows when a birth time allows intra-day term resolution.
func (d *Deriver) Derive(ctx context.Context, in Input) (*Result, error) {
	birthday := NormalizeBirthday(in.Birthday)
	birthTime := NormalizeTime(in.Time)

	var rec *Record
	var err error
	if in.BirthdayType == CalendarLunar {
		rec, err = d.provider.FindByLunarDate(ctx, birthday)
	} else {
		rec, err = d.provider.FindBySolarDate(ctx, birthday)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s date %s: %w", strings.ToLower(in.BirthdayType), birthday, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, birthday)
	}

	res := &Result{
		Gender:       in.Gender,
		BirthdayType: in.BirthdayType,
		Birthday:     birthday,
		Time:         birthTime,
		SolarDate:    rec.SolarDate,
		LunarDate:    rec.LunarDate,
		LeapMonth:    rec.LeapMonth,
		Season:       rec.Season,
	}
	res.SeasonStartTime = rec.SeasonStartTime

	daySky := rec.DaySky
	res.DaySky = newStemStar(daySky, daySky)
	res.DayGround = newBranchStar(daySky, rec.DayGround)

	monthSky, monthGround := rec.MonthSky, rec.MonthGround
	yearSky, yearGround := rec.YearSky, rec.YearGround

	// Pillar boundaries follow solar-term start times, not calendar months.
	// With a known birth time the governing term row (latest season start at
	// or before the instant) supplies month and year pillars; a birth before
	// a same-day term start thereby falls back to the previous window.
	if birthTime != nil {
		if instant, ok := birthInstant(rec.SolarDate, *birthTime); ok {
			before, err := d.provider.FindSeasonBefore(ctx, instant)
			if err != nil {
				return nil, fmt.Errorf("lookup season before %s: %w", instant, err)
			}
			if before != nil {
				monthSky, monthGround = before.MonthSky, before.MonthGround
				yearSky, yearGround = before.YearSky, before.YearGround
				res.Season = before.Season
				res.SeasonStartTime = before.SeasonStartTime
			}
			after, err := d.provider.FindSeasonAfter(ctx, instant)
			if err != nil {
				return nil, fmt.Errorf("lookup season after %s: %w", instant, err)
			}
			if after != nil {
				res.NextSeason = after.Season
				res.NextSeasonStartTime = after.SeasonStartTime
			}
		}

		hourSky, hourGround, ok := hourPillar(daySky, *birthTime)
		if ok {
			res.HourSky = newStemStar(daySky, hourSky)
			res.HourGround = newBranchStar(daySky, hourGround)
		}
	}

	res.MonthSky = newStemStar(daySky, monthSky)
	res.MonthGround = newBranchStar(daySky, monthGround)
	res.YearSky = newStemStar(daySky, yearSky)
	res.YearGround = newBranchStar(daySky, yearGround)

	return res, nil
}

// TenStarOf returns the relational label of target relative to the day stem,
// or "" when either glyph is outside the closed stem vocabulary.
func TenStarOf(daySky, target string) string {
	row, ok := tenStarTable[daySky]
	if !ok {
		return ""
	}
	return row[target]
}

// BranchTenStar labels a branch through its principal hidden stem.
func BranchTenStar(daySky, branch string) string {
	principal, ok := branchPrincipalStem[branch]
	if !ok {
		return ""
	}
	return TenStarOf(daySky, principal)
}

func newStemStar(daySky, stem string) *Star {
	return &Star{Korean: stem, TenStar: TenStarOf(daySky, stem)}
}

func newBranchStar(daySky, branch string) *Star {
	return &Star{Korean: branch, TenStar: BranchTenStar(daySky, branch)}
}

func birthInstant(solarDate, hhmm string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02 15:04", solarDate+" "+hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// hourPillar resolves the hour branch from the two-hour window containing
// the birth time (23:00 rolls into the first window) and the hour stem from
// the day stem by the five-day cycle rule.
func hourPillar(daySky, hhmm string) (string, string, bool) {
	dayIdx, ok := stemIndex[daySky]
	if !ok {
		return "", "", false
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", "", false
	}
	branchIdx := ((t.Hour() + 1) / 2) % 12
	stemIdx := ((dayIdx%5)*2 + branchIdx) % 10
	return stems[stemIdx], branches[branchIdx], true
}

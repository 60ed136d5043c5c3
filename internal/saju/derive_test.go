package saju

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	bySolar map[string]*Record
	byLunar map[string]*Record
	before  *Record
	after   *Record

	beforeCalledAt *time.Time
}

func (p *fakeProvider) FindBySolarDate(ctx context.Context, date string) (*Record, error) {
	return p.bySolar[date], nil
}

func (p *fakeProvider) FindByLunarDate(ctx context.Context, date string) (*Record, error) {
	return p.byLunar[date], nil
}

func (p *fakeProvider) FindSeasonAfter(ctx context.Context, at time.Time) (*Record, error) {
	return p.after, nil
}

func (p *fakeProvider) FindSeasonBefore(ctx context.Context, at time.Time) (*Record, error) {
	p.beforeCalledAt = &at
	return p.before, nil
}

func sampleRecord() *Record {
	return &Record{
		SolarDate:   "1990-03-15",
		LunarDate:   "1990-02-19",
		YearSky:     "경",
		YearGround:  "오",
		MonthSky:    "기",
		MonthGround: "묘",
		DaySky:      "갑",
		DayGround:   "자",
	}
}

func TestNormalizeBirthday(t *testing.T) {
	assert.Equal(t, "1990-03-15", NormalizeBirthday("19900315"))
	assert.Equal(t, "1990-03-15", NormalizeBirthday("1990-03-15"))
	assert.Equal(t, "90315", NormalizeBirthday("90315"))
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil", nil, nil},
		{"empty", ptr(""), nil},
		{"colon form", ptr("13:30"), ptr("13:30")},
		{"compact", ptr("1330"), ptr("13:30")},
		{"three digits", ptr("930"), ptr("09:30")},
		{"hour out of range", ptr("2530"), nil},
		{"minute out of range", ptr("1299"), nil},
		{"garbage", ptr("ab:cd"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeTime(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestDeriveSolarWithoutTime(t *testing.T) {
	provider := &fakeProvider{bySolar: map[string]*Record{"1990-03-15": sampleRecord()}}
	d := NewDeriver(provider)

	res, err := d.Derive(context.Background(), Input{
		Gender:       "MALE",
		BirthdayType: CalendarSolar,
		Birthday:     "19900315",
	})
	require.NoError(t, err)

	assert.Equal(t, "1990-03-15", res.Birthday)
	assert.Nil(t, res.Time)
	assert.Nil(t, res.HourSky)
	assert.Nil(t, res.HourGround)
	// Without a birth time no term window is resolved.
	assert.Empty(t, res.NextSeason)
	assert.Nil(t, res.NextSeasonStartTime)

	// Day stem relative to itself is always the peer star.
	assert.Equal(t, "갑", res.DaySky.Korean)
	assert.Equal(t, StarBigyeon, res.DaySky.TenStar)
	// 자 hides 계, which is 정인 to a 갑 day stem.
	assert.Equal(t, StarJeongin, res.DayGround.TenStar)
	// Month and year pillars come straight off the day row.
	assert.Equal(t, "기", res.MonthSky.Korean)
	assert.Equal(t, StarJeongjae, res.MonthSky.TenStar)
	assert.Equal(t, "경", res.YearSky.Korean)
	assert.Equal(t, StarPyeongwan, res.YearSky.TenStar)
}

func TestDeriveLunarLookup(t *testing.T) {
	provider := &fakeProvider{byLunar: map[string]*Record{"1990-02-19": sampleRecord()}}
	d := NewDeriver(provider)

	res, err := d.Derive(context.Background(), Input{
		BirthdayType: CalendarLunar,
		Birthday:     "1990-02-19",
	})
	require.NoError(t, err)
	assert.Equal(t, "1990-03-15", res.SolarDate)
	assert.Equal(t, "1990-02-19", res.LunarDate)
}

func TestDeriveMissingRecord(t *testing.T) {
	d := NewDeriver(&fakeProvider{})

	_, err := d.Derive(context.Background(), Input{
		BirthdayType: CalendarSolar,
		Birthday:     "1800-01-01",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeriveWithTimeUsesGoverningTerm(t *testing.T) {
	seasonStart := time.Date(1990, 3, 15, 10, 0, 0, 0, time.UTC)
	season := "경칩"
	dayRow := sampleRecord()
	dayRow.Season = season
	dayRow.SeasonStartTime = &seasonStart

	// Governing term row carries different month/year pillars.
	before := &Record{
		SolarDate:   "1990-02-04",
		YearSky:     "기",
		YearGround:  "사",
		MonthSky:    "무",
		MonthGround: "인",
		DaySky:      "정",
		DayGround:   "해",
		Season:      "입춘",
	}

	nextStart := time.Date(1990, 3, 21, 2, 19, 0, 0, time.UTC)
	after := &Record{
		SolarDate:       "1990-03-21",
		Season:          "춘분",
		SeasonStartTime: &nextStart,
	}

	provider := &fakeProvider{
		bySolar: map[string]*Record{"1990-03-15": dayRow},
		before:  before,
		after:   after,
	}
	d := NewDeriver(provider)

	birthTime := "09:30"
	res, err := d.Derive(context.Background(), Input{
		BirthdayType: CalendarSolar,
		Birthday:     "1990-03-15",
		Time:         &birthTime,
	})
	require.NoError(t, err)

	// Month and year pillars follow the governing term row, not the day row.
	assert.Equal(t, "무", res.MonthSky.Korean)
	assert.Equal(t, "인", res.MonthGround.Korean)
	assert.Equal(t, "기", res.YearSky.Korean)
	assert.Equal(t, "입춘", res.Season)

	// The next term row closes the governing window.
	assert.Equal(t, "춘분", res.NextSeason)
	require.NotNil(t, res.NextSeasonStartTime)
	assert.Equal(t, nextStart, *res.NextSeasonStartTime)

	// Day pillar still comes from the day row.
	assert.Equal(t, "갑", res.DaySky.Korean)

	require.NotNil(t, provider.beforeCalledAt)
	assert.Equal(t, time.Date(1990, 3, 15, 9, 30, 0, 0, time.UTC), *provider.beforeCalledAt)
}

func TestDeriveHourPillar(t *testing.T) {
	provider := &fakeProvider{bySolar: map[string]*Record{"1990-03-15": sampleRecord()}}
	d := NewDeriver(provider)

	cases := []struct {
		time       string
		wantBranch string
		wantStem   string
	}{
		// 갑 day stem anchors the hour-stem cycle at 갑자.
		{"00:30", "자", "갑"},
		{"09:30", "사", "기"},
		{"13:00", "미", "신"},
		{"23:30", "자", "갑"},
	}
	for _, tc := range cases {
		t.Run(tc.time, func(t *testing.T) {
			bt := tc.time
			res, err := d.Derive(context.Background(), Input{
				BirthdayType: CalendarSolar,
				Birthday:     "1990-03-15",
				Time:         &bt,
			})
			require.NoError(t, err)
			require.NotNil(t, res.HourGround)
			assert.Equal(t, tc.wantBranch, res.HourGround.Korean)
			assert.Equal(t, tc.wantStem, res.HourSky.Korean)
		})
	}
}

func TestDeriveInvalidTimeDegradesToUnknown(t *testing.T) {
	provider := &fakeProvider{bySolar: map[string]*Record{"1990-03-15": sampleRecord()}}
	d := NewDeriver(provider)

	bad := "25:99"
	res, err := d.Derive(context.Background(), Input{
		BirthdayType: CalendarSolar,
		Birthday:     "1990-03-15",
		Time:         &bad,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Time)
	assert.Nil(t, res.HourSky)
}

func TestTenStarOfUnknownGlyph(t *testing.T) {
	assert.Equal(t, "", TenStarOf("갑", "x"))
	assert.Equal(t, "", TenStarOf("x", "갑"))
	assert.Equal(t, "", BranchTenStar("갑", "x"))
}

func TestDeriveIsDeterministic(t *testing.T) {
	provider := &fakeProvider{bySolar: map[string]*Record{"1990-03-15": sampleRecord()}}
	d := NewDeriver(provider)
	in := Input{BirthdayType: CalendarSolar, Birthday: "1990-03-15"}

	first, err := d.Derive(context.Background(), in)
	require.NoError(t, err)
	second, err := d.Derive(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func ptr(s string) *string { return &s }

package models

import "time"

// ManseRecord is one row of the pre-seeded calendrical reference table.
// One row per solar date, carrying the corresponding lunar date, the solar
// term (if one starts that day) with its exact start timestamp, and the
// sexagenary stem/branch codes for the year, month and day pillars.
// Reference data only: seeded once, never mutated by the derivation core.
type ManseRecord struct {
	SolarDate       string     `db:"solar_date" json:"solarDate"`
	LunarDate       string     `db:"lunar_date" json:"lunarDate"`
	Season          *string    `db:"season" json:"season"`
	SeasonStartTime *time.Time `db:"season_start_time" json:"seasonStartTime"`
	LeapMonth       int        `db:"leap_month" json:"leapMonth"`
	YearSky         string     `db:"year_sky" json:"yearSky"`
	YearGround      string     `db:"year_ground" json:"yearGround"`
	MonthSky        string     `db:"month_sky" json:"monthSky"`
	MonthGround     string     `db:"month_ground" json:"monthGround"`
	DaySky          string     `db:"day_sky" json:"daySky"`
	DayGround       string     `db:"day_ground" json:"dayGround"`
	CreatedAt       time.Time  `db:"created_at" json:"-"`
	UpdatedAt       time.Time  `db:"updated_at" json:"-"`
}

package models

import "time"

// TestVersion is the published question set for a test slug.
type TestVersion struct {
	ID          string    `db:"id" json:"id"`
	TestID      string    `db:"test_id" json:"testId"`
	TestSlug    string    `db:"test_slug" json:"testSlug"`
	TestName    string    `db:"test_name" json:"testName"`
	Description string    `db:"description" json:"description"`
	VersionCode string    `db:"version_code" json:"versionCode"`
	Status      string    `db:"status" json:"status"`
	PublishedAt time.Time `db:"published_at" json:"publishedAt"`
}

// VersionQuestion is one flattened question row of an active version, joined
// with its category and option-set headers.
type VersionQuestion struct {
	QuestionID     string  `db:"question_id"`
	DisplayOrder   int     `db:"display_order"`
	Text           string  `db:"text"`
	CategoryID     *string `db:"category_id"`
	CategoryCode   *string `db:"category_code"`
	CategoryName   *string `db:"category_name"`
	ParentID       *string `db:"parent_id"`
	OptionSetID    *string `db:"option_set_id"`
	OptionSetName  *string `db:"option_set_name"`
	OptionSetDescr *string `db:"option_set_description"`
}

// VersionOption is one selectable option of a question's option set.
type VersionOption struct {
	OptionID    string `db:"option_id"`
	OptionSetID string `db:"option_set_id"`
	Label       string `db:"label"`
	ValueCode   string `db:"value_code"`
	Score       int    `db:"score"`
}

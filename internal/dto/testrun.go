package dto

// RunCategory describes a question's category within a run payload.
type RunCategory struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// RunOption is one selectable answer option.
type RunOption struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	ValueCode string `json:"valueCode"`
	Score     int    `json:"score"`
}

// RunOptionSet is a question's option set with options sorted by score
// descending.
type RunOptionSet struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Options     []RunOption `json:"options"`
}

// RunQuestion is one question presented to a respondent.
type RunQuestion struct {
	ID        string        `json:"id"`
	Order     int           `json:"order"`
	Text      string        `json:"text"`
	Category  *RunCategory  `json:"category"`
	OptionSet *RunOptionSet `json:"optionSet"`
}

// RunTest identifies the test of a run payload.
type RunTest struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RunVersion identifies the active version of a run payload.
type RunVersion struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// RunResponse is the active question set for a test slug.
type RunResponse struct {
	Test      RunTest       `json:"test"`
	Version   RunVersion    `json:"version"`
	Questions []RunQuestion `json:"questions"`
}

// AnswerInput is one submitted answer.
type AnswerInput struct {
	QuestionID   string `json:"questionId" validate:"required"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	ParentID     string `json:"parentId"`
	ValueCode    string `json:"valueCode"`
	Score        int    `json:"score"`
}

// UserMetaInput carries respondent metadata with the submission.
type UserMetaInput struct {
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Birthday     string `json:"birthday"`
	BirthdayType string `json:"birthdayType" validate:"omitempty,oneof=SOLAR LUNAR"`
	Time         string `json:"time"`
}

// SubmitResultRequest is the submission payload for a test run.
type SubmitResultRequest struct {
	TicketCode     string         `json:"ticketCode"`
	UserMeta       UserMetaInput  `json:"userMeta"`
	Answers        []AnswerInput  `json:"answers" validate:"required,dive"`
	ResultSnapshot map[string]any `json:"resultSnapshot"`
	ResultVersion  string         `json:"resultVersion"`
}

// SubmitResultResponse identifies the stored result.
type SubmitResultResponse struct {
	ResultID  string `json:"resultId"`
	TestID    string `json:"testId"`
	VersionID string `json:"versionId"`
}

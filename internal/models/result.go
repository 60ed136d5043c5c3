package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crata-labs/crata-api/internal/saju"
)

// UserMeta carries respondent-supplied metadata attached to a submission.
type UserMeta struct {
	Name         string `json:"name,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Birthday     string `json:"birthday,omitempty"`
	BirthdayType string `json:"birthdayType,omitempty"`
	Time         string `json:"time,omitempty"`
}

// Answer is a single scored survey answer.
type Answer struct {
	QuestionID   string `json:"questionId"`
	CategoryID   string `json:"categoryId,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
	ParentID     string `json:"parentId,omitempty"`
	ValueCode    string `json:"valueCode,omitempty"`
	Score        int    `json:"score"`
}

// AnswerList is a jsonb-backed slice of answers.
type AnswerList []Answer

// ResultSnapshot is the frozen derived payload stored with a result. The
// behavioral snapshot computed at submission time lives under the manse key;
// it is never recomputed on read.
type ResultSnapshot struct {
	MainType string         `json:"mainType,omitempty"`
	Scores   map[string]int `json:"scores,omitempty"`
	Manse    *saju.Snapshot `json:"manse"`
}

// TestResult is one stored submission.
type TestResult struct {
	ID            string         `db:"id" json:"id"`
	TestID        string         `db:"test_id" json:"testId"`
	VersionID     string         `db:"version_id" json:"versionId"`
	TicketID      *string        `db:"ticket_id" json:"ticketId,omitempty"`
	GroupID       *int64         `db:"group_id" json:"groupId,omitempty"`
	ResultVersion string         `db:"result_version" json:"resultVersion"`
	UserMeta      UserMetaJSON   `db:"user_meta" json:"userMeta"`
	Answers       AnswerListJSON `db:"answers" json:"answers"`
	Snapshot      SnapshotJSON   `db:"result_snapshot" json:"resultSnapshot"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

// GroupResult joins a stored result with its consuming ticket, as used by the
// group analytics queries.
type GroupResult struct {
	TestResult
	ClientName   string     `db:"client_name" json:"clientName"`
	TicketUsedAt *time.Time `db:"ticket_used_at" json:"ticketUsedAt,omitempty"`
}

// UserMetaJSON wraps UserMeta for jsonb persistence.
type UserMetaJSON struct {
	UserMeta
}

// AnswerListJSON wraps AnswerList for jsonb persistence.
type AnswerListJSON struct {
	AnswerList
}

// SnapshotJSON wraps ResultSnapshot for jsonb persistence.
type SnapshotJSON struct {
	ResultSnapshot
}

func (m UserMetaJSON) Value() (driver.Value, error)  { return jsonbValue(m.UserMeta) }
func (m *UserMetaJSON) Scan(src interface{}) error   { return jsonbScan(src, &m.UserMeta) }
func (a AnswerListJSON) Value() (driver.Value, error) { return jsonbValue(a.AnswerList) }
func (a *AnswerListJSON) Scan(src interface{}) error  { return jsonbScan(src, &a.AnswerList) }
func (s SnapshotJSON) Value() (driver.Value, error)  { return jsonbValue(s.ResultSnapshot) }
func (s *SnapshotJSON) Scan(src interface{}) error   { return jsonbScan(src, &s.ResultSnapshot) }

func (m UserMetaJSON) MarshalJSON() ([]byte, error)    { return json.Marshal(m.UserMeta) }
func (m *UserMetaJSON) UnmarshalJSON(b []byte) error   { return json.Unmarshal(b, &m.UserMeta) }
func (a AnswerListJSON) MarshalJSON() ([]byte, error)  { return json.Marshal(a.AnswerList) }
func (a *AnswerListJSON) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &a.AnswerList) }
func (s SnapshotJSON) MarshalJSON() ([]byte, error)    { return json.Marshal(s.ResultSnapshot) }
func (s *SnapshotJSON) UnmarshalJSON(b []byte) error   { return json.Unmarshal(b, &s.ResultSnapshot) }

func jsonbValue(v interface{}) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return raw, nil
}

func jsonbScan(src interface{}, dest interface{}) error {
	if src == nil {
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

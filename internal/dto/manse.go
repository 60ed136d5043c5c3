package dto

import "github.com/crata-labs/crata-api/internal/saju"

// ManseCalcRequest asks for a one-off derivation without persistence.
type ManseCalcRequest struct {
	Gender       string `json:"gender" validate:"omitempty,oneof=MALE FEMALE"`
	BirthdayType string `json:"birthdayType" validate:"omitempty,oneof=SOLAR LUNAR"`
	Birthday     string `json:"birthday" validate:"required"`
	Time         string `json:"time"`
}

// ManseMember echoes the normalized birth data of a calculation.
type ManseMember struct {
	Birthday     string  `json:"birthday"`
	Time         *string `json:"time"`
	BirthdayType string  `json:"birthdayType"`
	Gender       string  `json:"gender"`
}

// ManseCalcResponse carries the derived chart and classification.
type ManseCalcResponse struct {
	Member   ManseMember    `json:"member"`
	Saju     *saju.Result   `json:"saju"`
	Snapshot *saju.Snapshot `json:"snapshot"`
}

// ManseSeedRequest points the seed import at a dump file.
type ManseSeedRequest struct {
	FileName string `json:"fileName" validate:"required"`
}

// ManseSeedResponse acknowledges an enqueued seed import.
type ManseSeedResponse struct {
	JobID    string `json:"jobId"`
	FileName string `json:"fileName"`
	Status   string `json:"status"`
}

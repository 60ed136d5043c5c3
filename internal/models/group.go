package models

import "time"

// Group is a purchasing organisation whose members take assessments through
// assigned tickets. Groups may nest one level (parent with sub-groups).
type Group struct {
	GroupID       int64     `db:"group_id" json:"groupId"`
	GroupName     string    `db:"group_name" json:"groupName"`
	ParentGroupID *int64    `db:"parent_group_id" json:"parentGroupId,omitempty"`
	TicketCount   int       `db:"ticket_count" json:"ticketCount"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// TicketStatus values.
const (
	TicketAvailable = "AVAILABLE"
	TicketUsed      = "USED"
	TicketExpired   = "EXPIRED"
)

// Ticket grants one assessment run to a group member or individual buyer.
type Ticket struct {
	TicketID    string     `db:"ticket_id" json:"ticketId"`
	Code        string     `db:"code" json:"code"`
	Status      string     `db:"status" json:"status"`
	GroupID     *int64     `db:"group_id" json:"groupId,omitempty"`
	ClientName  string     `db:"client_name" json:"clientName"`
	IsCompleted bool       `db:"is_completed" json:"isCompleted"`
	UsedAt      *time.Time `db:"used_at" json:"usedAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

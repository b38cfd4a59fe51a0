package types

import "time"

const (
	ActionTagAdded                 = "tag_added"
	ActionTagDeleted               = "tag_deleted"
	ActionSubscriptionStatusChange = "subscription_status_change"
	ActionNGOApproved              = "ngo_approved"
	ActionNGORejected              = "ngo_rejected"
)

type AdminAction struct {
	ID            int64     `db:"action_id" json:"action_id"`
	AdminID       int64     `db:"admin_id" json:"admin_id"`
	NGOID         *int64    `db:"ngo_id" json:"ngo_id"`
	ActionType    string    `db:"action_type" json:"action_type"`
	ActionDetails *string   `db:"action_details" json:"action_details"`
	ActionDate    time.Time `db:"action_date" json:"action_date"`
}

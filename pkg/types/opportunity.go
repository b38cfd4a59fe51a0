package types

import "time"

type Opportunity struct {
	ID           int64      `db:"opportunity_id" json:"opportunity_id"`
	NGOID        int64      `db:"ngo_id" json:"ngo_id"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description"`
	Location     string     `db:"location" json:"location"`
	Start        *time.Time `db:"start" json:"start"`
	End          *time.Time `db:"end" json:"end"`
	ContactEmail *string    `db:"contact_email" json:"contact_email"`
	ContactPhone *string    `db:"contact_phone" json:"contact_phone"`

	Tags []string `db:"-" json:"tags"`
}

package types

// NGO is a row of the ngo table. Tags is filled by tag aggregation and is
// never nil once an NGO leaves the search handlers.
type NGO struct {
	ID           int64   `db:"ngo_id" json:"ngo_id"`
	UserID       int64   `db:"user_id" json:"user_id"`
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description"`
	ContactEmail *string `db:"contact_email" json:"contact_email"`
	WebsiteURL   *string `db:"website_url" json:"website_url"`
	PhoneNr      *string `db:"phone_nr" json:"phone_nr"`
	BankDetails  *string `db:"bank_details" json:"bank_details"`
	Verified     Bit     `db:"verified" json:"verified"`

	Tags []string `db:"-" json:"tags"`
}

// NGOInfo is the owner-joined view an NGO sees on its own profile.
type NGOInfo struct {
	NGOID        int64   `db:"ngo_id" json:"ngo_id"`
	UserID       int64   `db:"user_id" json:"user_id"`
	Name         string  `db:"name" json:"name"`
	Description  *string `db:"description" json:"description"`
	WebsiteURL   *string `db:"website_url" json:"website_url"`
	ContactEmail *string `db:"contact_email" json:"contact_email"`
	PhoneNr      *string `db:"phone_nr" json:"phone_nr"`
	Type         string  `db:"type" json:"type"`
	Username     *string `db:"username" json:"username"`
}

type NGOContact struct {
	NGOID        int64   `db:"ngo_id" json:"ngo_id"`
	ContactEmail *string `db:"contact_email" json:"contact_email"`
	PhoneNr      *string `db:"phone_nr" json:"phone_nr"`
}

type Follower struct {
	Username *string `db:"username" json:"username"`
}

type Following struct {
	NGOID   int64  `db:"ngo_id" json:"ngo_id"`
	NGOName string `db:"ngo_name" json:"ngo_name"`
}

// NewNGO is what signup collects when the isNGO flag is set.
type NewNGO struct {
	Name         string
	Description  string
	ContactEmail string
	WebsiteURL   string
	PhoneNr      string
}

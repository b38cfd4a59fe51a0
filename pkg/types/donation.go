package types

type Donation struct {
	DonationID int64  `db:"donation_id" json:"donation_id"`
	UserID     int64  `db:"user_id" json:"user_id"`
	NGOID      int64  `db:"ngo_id" json:"ngo_id"`
	NGOName    string `db:"ngo_name" json:"ngo_name"`
	Amount     Amount `db:"amount" json:"amount"`
}

// ReceivedDonation is a donation as the receiving NGO sees it.
type ReceivedDonation struct {
	UsersWhoDonated *string `db:"users_who_donated" json:"users_who_donated"`
	Amount          Amount  `db:"amount" json:"amount"`
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Valid() bool {
	return s == SubscriptionActive || s == SubscriptionCanceled
}

type Subscription struct {
	ID      int64              `db:"subscription_id" json:"subscription_id"`
	UserID  int64              `db:"user_id" json:"user_id"`
	NGOID   int64              `db:"ngo_id" json:"ngo_id"`
	NGOName string             `db:"ngo_name" json:"ngo_name"`
	Amount  Amount             `db:"amount" json:"amount"`
	Status  SubscriptionStatus `db:"status" json:"status"`
}

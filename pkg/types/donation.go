package types

type DonationStatus string

const (
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
)

type DonationKind string

const (
	DonationKindOneTime     DonationKind = "one-time"
	DonationKindSponsorship DonationKind = "sponsorship"
)

func (k DonationKind) Valid() bool {
	return k == DonationKindOneTime || k == DonationKindSponsorship
}

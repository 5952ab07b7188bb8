package stripe_event

import (
	"github.com/shopspring/decimal"

	"github.com/fatflowers/sponsorship/pkg/billingerr"
	"github.com/fatflowers/sponsorship/pkg/types"
)

// Metadata keys written by the checkout initiator and read back by the webhook.
const (
	MetaViewerID     = "viewerId"
	MetaMissionaryID = "missionaryId"
	MetaPlanID       = "planId"
	MetaKind         = "type"
	MetaAmount       = "amount"
)

// SponsorMetadata is the identifying metadata attached to checkout sessions
// and subscriptions.
type SponsorMetadata struct {
	ViewerID     string `validate:"required"`
	MissionaryID string `validate:"required"`
	PlanID       string
	// Kind is free-form; see DonationKind.
	Kind types.DonationKind
	// Amount is in major units; only set for one-time donations.
	Amount string `validate:"omitempty,numeric"`
}

// NewSponsorMetadata reads metadata keys without validating them.
func NewSponsorMetadata(m map[string]string) SponsorMetadata {
	return SponsorMetadata{
		ViewerID:     m[MetaViewerID],
		MissionaryID: m[MetaMissionaryID],
		PlanID:       m[MetaPlanID],
		Kind:         types.DonationKind(m[MetaKind]),
		Amount:       m[MetaAmount],
	}
}

// Map renders the metadata for the provider API, omitting empty keys.
func (m SponsorMetadata) Map() map[string]string {
	out := map[string]string{}
	for k, v := range map[string]string{
		MetaViewerID:     m.ViewerID,
		MetaMissionaryID: m.MissionaryID,
		MetaPlanID:       m.PlanID,
		MetaKind:         string(m.Kind),
		MetaAmount:       m.Amount,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// DonationKind normalizes Kind. Values other than the known kinds, including
// "subscription" or an empty type, are sponsorships.
func (m SponsorMetadata) DonationKind() types.DonationKind {
	if m.Kind.Valid() {
		return m.Kind
	}
	return types.DonationKindSponsorship
}

// IsOneTime reports a one-time donation.
func (m SponsorMetadata) IsOneTime() bool {
	return m.DonationKind() == types.DonationKindOneTime
}

// ParseCheckoutMetadata validates checkout metadata: viewer and missionary
// are always required, plus amount for one-time donations or plan for
// sponsorships. No defaults are guessed.
func ParseCheckoutMetadata(m map[string]string) (SponsorMetadata, error) {
	md := NewSponsorMetadata(m)
	if err := validate.Struct(md); err != nil {
		return md, billingerr.Malformed("checkout metadata: %v", err)
	}
	if md.IsOneTime() {
		if md.Amount == "" {
			return md, billingerr.Malformed("checkout metadata: one-time donation without %s", MetaAmount)
		}
		if _, err := md.AmountMajor(); err != nil {
			return md, err
		}
	} else if md.PlanID == "" {
		return md, billingerr.Malformed("checkout metadata: sponsorship without %s", MetaPlanID)
	}
	return md, nil
}

// AmountMajor parses Amount as a positive decimal.
func (m SponsorMetadata) AmountMajor() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero, billingerr.Malformed("metadata %s %q: %v", MetaAmount, m.Amount, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, billingerr.Malformed("metadata %s must be positive", MetaAmount)
	}
	return d, nil
}

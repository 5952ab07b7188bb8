// Package checkout starts provider-hosted checkout sessions whose metadata
// the webhook later uses to attribute the payment.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sponsorship/internal/app/service/account"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_api"
	"github.com/fatflowers/sponsorship/internal/platform/stripe/stripe_event"
	"github.com/fatflowers/sponsorship/pkg/config"
	"github.com/fatflowers/sponsorship/pkg/logctx"
	"github.com/fatflowers/sponsorship/pkg/types"
)

// ErrInvalidRequest marks caller errors: bad input or an unknown plan.
var ErrInvalidRequest = errors.New("invalid checkout request")

var validate = validator.New(validator.WithRequiredStructEnabled())

type Request struct {
	ViewerID     string `json:"viewerId" validate:"required,max=64"`
	MissionaryID string `json:"missionaryId" validate:"required,max=64"`
	// Exactly one of PlanID (sponsorship) and Amount (one-time, major units) is set.
	PlanID     string `json:"planId,omitempty" validate:"required_without=Amount,excluded_with=Amount"`
	Amount     string `json:"amount,omitempty" validate:"required_without=PlanID,excluded_with=PlanID"`
	SuccessURL string `json:"successUrl,omitempty" validate:"omitempty,url"`
	CancelURL  string `json:"cancelUrl,omitempty" validate:"omitempty,url"`
}

type Response struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SessionCreator creates hosted checkout sessions at the provider.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, req *stripe_api.CheckoutSessionRequest) (*stripe_api.CheckoutSession, error)
}

// CustomerLookup returns the provider customer already linked to a viewer.
type CustomerLookup interface {
	CustomerID(ctx context.Context, viewerID string) (string, error)
}

type Service struct {
	cfg       *config.Config
	sessions  SessionCreator
	customers CustomerLookup
	log       *zap.SugaredLogger
}

func New(cfg *config.Config, sessions SessionCreator, customers CustomerLookup, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, sessions: sessions, customers: customers, log: log}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// CreateSession validates req and creates a subscription-mode session for a
// plan or a payment-mode session for a one-time amount.
func (s *Service) CreateSession(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, invalid("empty request")
	}
	if err := validate.Struct(req); err != nil {
		return nil, invalid("%v", err)
	}

	out := &stripe_api.CheckoutSessionRequest{
		SuccessURL: lo.CoalesceOrEmpty(req.SuccessURL, s.cfg.Stripe.SuccessURL),
		CancelURL:  lo.CoalesceOrEmpty(req.CancelURL, s.cfg.Stripe.CancelURL),
	}
	if out.SuccessURL == "" || out.CancelURL == "" {
		return nil, invalid("success and cancel urls are required")
	}

	md := stripe_event.SponsorMetadata{ViewerID: req.ViewerID, MissionaryID: req.MissionaryID}
	if req.PlanID != "" {
		plan := s.cfg.GetPlanByID(req.PlanID)
		if plan == nil || plan.ProviderPriceID == "" {
			return nil, invalid("unknown plan %q", req.PlanID)
		}
		md.PlanID = plan.ID
		md.Kind = types.DonationKindSponsorship
		out.Subscription = true
		out.PriceID = plan.ProviderPriceID
	} else {
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, invalid("amount must be a positive decimal, got %q", req.Amount)
		}
		out.Currency = s.cfg.Stripe.Currency
		out.AmountMinor = types.MajorToMinor(amount, out.Currency)
		if out.AmountMinor <= 0 {
			return nil, invalid("amount %s is below the smallest %s unit", amount, out.Currency)
		}
		md.Amount = amount.String()
		md.Kind = types.DonationKindOneTime
		out.ProductName = "Donation"
	}
	out.Metadata = md.Map()

	customerID, err := s.customers.CustomerID(ctx, req.ViewerID)
	if err != nil {
		return nil, err
	}
	out.CustomerID = customerID

	sess, err := s.sessions.CreateCheckoutSession(ctx, out)
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("checkout_session_created",
		"session_id", sess.ID, "viewer_id", req.ViewerID, "missionary_id", req.MissionaryID, "kind", md.Kind)
	return &Response{SessionID: sess.ID, URL: sess.URL}, nil
}

var Module = fx.Options(
	fx.Provide(
		func(c *stripe_api.Client) SessionCreator { return c },
		func(s *account.Store) CustomerLookup { return s },
		New,
	),
)

package checkout

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
)

// Gate is the availability check run before any payment is offered. It is
// an early exit only; the backend re-checks at initiation and its answer
// wins.
type Gate struct {
	listings ports.ListingAPI
	log      *zap.Logger
}

func NewGate(listings ports.ListingAPI, log *zap.Logger) *Gate {
	return &Gate{listings: listings, log: log}
}

// Fetch loads the current listing from the backend. It never serves a
// cached copy.
func (g *Gate) Fetch(ctx context.Context, productID string, productType domain.ListingType) (*domain.Listing, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.NewCheckoutError(domain.KindValidation, "", nil)
	}

	switch productType {
	case domain.ListingTypeVehicle:
		v, err := g.listings.GetVehicle(ctx, productID)
		if err != nil {
			return nil, Classify(err)
		}
		return domain.ListingFromVehicle(v), nil
	case domain.ListingTypeBattery:
		b, err := g.listings.GetBattery(ctx, productID)
		if err != nil {
			return nil, Classify(err)
		}
		return domain.ListingFromBattery(b), nil
	default:
		return nil, domain.NewCheckoutError(domain.KindValidation, "", nil)
	}
}

// Check fetches the listing and fails with ProductUnavailable unless it is
// AVAILABLE. The listing is returned alongside that error so the caller can
// still show what was sold.
func (g *Gate) Check(ctx context.Context, productID string, productType domain.ListingType) (*domain.Listing, error) {
	listing, err := g.Fetch(ctx, productID, productType)
	if err != nil {
		return nil, err
	}

	if !listing.IsAvailable() {
		msg := domain.MsgProductNotAvailable
		if listing.Status == domain.ListingStatusSold {
			msg = domain.MsgProductSold
		}
		g.log.Info("Listing not available for checkout",
			zap.String("listing_id", listing.ID),
			zap.String("status", string(listing.Status)),
		)
		return listing, domain.NewCheckoutError(domain.KindProductUnavailable, msg, nil)
	}

	return listing, nil
}

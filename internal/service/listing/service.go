package listing

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/checkout"
)

type Service struct {
	api ports.ListingAPI
	log *zap.Logger
}

func NewService(api ports.ListingAPI, log *zap.Logger) *Service {
	return &Service{api: api, log: log}
}

var _ ports.ListingService = (*Service)(nil)

func (s *Service) ListVehicles(ctx context.Context) ([]domain.Listing, error) {
	vehicles, err := s.api.ListVehicles(ctx)
	if err != nil {
		return nil, checkout.Classify(err)
	}

	out := make([]domain.Listing, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, *domain.ListingFromVehicle(&vehicles[i]))
	}
	return out, nil
}

func (s *Service) ListBatteries(ctx context.Context) ([]domain.Listing, error) {
	batteries, err := s.api.ListBatteries(ctx)
	if err != nil {
		return nil, checkout.Classify(err)
	}

	out := make([]domain.Listing, 0, len(batteries))
	for i := range batteries {
		out = append(out, *domain.ListingFromBattery(&batteries[i]))
	}
	return out, nil
}

func (s *Service) SellerProfile(ctx context.Context, sellerID string) (*domain.SellerProfile, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, domain.NewCheckoutError(domain.KindValidation, "", nil)
	}

	profile, err := s.api.GetSellerProfile(ctx, sellerID)
	if err != nil {
		return nil, checkout.Classify(err)
	}
	return profile, nil
}

package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/api"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/mocks"
)

func TestListVehicles(t *testing.T) {
	backend := &mocks.MockBackend{
		ListVehiclesFunc: func(ctx context.Context) ([]domain.Vehicle, error) {
			return []domain.Vehicle{
				{ID: "v-1", Title: "VinFast VF8", Status: domain.ListingStatusAvailable, Images: []string{"a.jpg"}},
				{ID: "v-2", Title: "VinFast VF e34", Status: domain.ListingStatusSold},
			}, nil
		},
	}
	svc := NewService(backend, zap.NewNop())

	listings, err := svc.ListVehicles(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, domain.ListingTypeVehicle, listings[0].Type)
	assert.Equal(t, "a.jpg", listings[0].Image)
	assert.Equal(t, "v-1", listings[0].Vehicle.ID)
	assert.False(t, listings[1].IsAvailable())
}

func TestListBatteries_Network(t *testing.T) {
	backend := &mocks.MockBackend{
		ListBatteriesFunc: func(ctx context.Context) ([]domain.Battery, error) {
			return nil, &api.Error{Op: "list batteries", Cause: errors.New("dial tcp: connection refused")}
		},
	}
	svc := NewService(backend, zap.NewNop())

	_, err := svc.ListBatteries(context.Background())
	assert.Equal(t, domain.KindNetwork, domain.KindOf(err))
}

func TestSellerProfile(t *testing.T) {
	backend := &mocks.MockBackend{
		GetSellerProfileFunc: func(ctx context.Context, sellerID string) (*domain.SellerProfile, error) {
			return &domain.SellerProfile{Seller: domain.Seller{ID: sellerID, Name: "Minh"}}, nil
		},
	}
	svc := NewService(backend, zap.NewNop())

	profile, err := svc.SellerProfile(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Minh", profile.Seller.Name)

	_, err = svc.SellerProfile(context.Background(), " ")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Equal(t, 1, backend.CallCount("GetSellerProfile"))
}

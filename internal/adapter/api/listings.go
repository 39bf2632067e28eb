package api

import (
	"context"
	"net/http"

	"github.com/evmarket/checkout-client/internal/domain"
)

func (c *Client) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	var data struct {
		Vehicle *domain.Vehicle `json:"vehicle"`
	}
	if err := c.do(ctx, call{op: "get_vehicle", method: http.MethodGet, path: "/vehicles/" + escape(id)}, &data); err != nil {
		return nil, err
	}
	if data.Vehicle == nil {
		return nil, &Error{Op: "get_vehicle", Status: http.StatusNotFound, Message: "Product not found"}
	}
	return data.Vehicle, nil
}

func (c *Client) GetBattery(ctx context.Context, id string) (*domain.Battery, error) {
	var data struct {
		Battery *domain.Battery `json:"battery"`
	}
	if err := c.do(ctx, call{op: "get_battery", method: http.MethodGet, path: "/batteries/" + escape(id)}, &data); err != nil {
		return nil, err
	}
	if data.Battery == nil {
		return nil, &Error{Op: "get_battery", Status: http.StatusNotFound, Message: "Product not found"}
	}
	return data.Battery, nil
}

func (c *Client) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	var data struct {
		Vehicles []domain.Vehicle `json:"vehicles"`
	}
	if err := c.do(ctx, call{op: "list_vehicles", method: http.MethodGet, path: "/vehicles/"}, &data); err != nil {
		return nil, err
	}
	return data.Vehicles, nil
}

func (c *Client) ListBatteries(ctx context.Context) ([]domain.Battery, error) {
	var data struct {
		Batteries []domain.Battery `json:"batteries"`
	}
	if err := c.do(ctx, call{op: "list_batteries", method: http.MethodGet, path: "/batteries/"}, &data); err != nil {
		return nil, err
	}
	return data.Batteries, nil
}

func (c *Client) GetSellerProfile(ctx context.Context, sellerID string) (*domain.SellerProfile, error) {
	var profile domain.SellerProfile
	if err := c.do(ctx, call{op: "get_seller_profile", method: http.MethodGet, path: "/users/" + escape(sellerID) + "/profile"}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// ListingType tags which product a Listing carries.
type ListingType string

const (
	ListingTypeVehicle ListingType = "VEHICLE"
	ListingTypeBattery ListingType = "BATTERY"
)

// ParseListingType accepts both the wire form ("VEHICLE") and the route form
// used by the mobile app ("vehicle").
func ParseListingType(s string) (ListingType, error) {
	switch ListingType(strings.ToUpper(strings.TrimSpace(s))) {
	case ListingTypeVehicle:
		return ListingTypeVehicle, nil
	case ListingTypeBattery:
		return ListingTypeBattery, nil
	default:
		return "", fmt.Errorf("unknown listing type %q", s)
	}
}

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "AVAILABLE"
	ListingStatusSold      ListingStatus = "SOLD"
	ListingStatusDelisted  ListingStatus = "DELISTED"
)

type Seller struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Avatar     string     `json:"avatar"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	IsVerified bool       `json:"isVerified,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

type Review struct {
	ID           string    `json:"id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	MediaURLs    []string  `json:"mediaUrls"`
	Type         string    `json:"type"`
	ProductID    string    `json:"productId"`
	ProductTitle string    `json:"productTitle"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SellerProfile struct {
	Seller  Seller   `json:"seller"`
	Reviews []Review `json:"reviews"`
}

type VehicleSpecifications struct {
	Warranty           map[string]string `json:"warranty,omitempty"`
	Dimensions         map[string]string `json:"dimensions,omitempty"`
	Performance        map[string]string `json:"performance,omitempty"`
	BatteryAndCharging map[string]string `json:"batteryAndCharging,omitempty"`
}

type Vehicle struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Price          float64               `json:"price"`
	Images         []string              `json:"images"`
	Status         ListingStatus         `json:"status"`
	Brand          string                `json:"brand"`
	Model          string                `json:"model"`
	Year           int                   `json:"year"`
	Mileage        int                   `json:"mileage"`
	Specifications VehicleSpecifications `json:"specifications"`
	IsVerified     bool                  `json:"isVerified"`
	SellerID       string                `json:"sellerId"`
	Seller         *Seller               `json:"seller,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

type BatterySpecifications struct {
	Weight           string `json:"weight,omitempty"`
	Voltage          string `json:"voltage,omitempty"`
	Chemistry        string `json:"chemistry,omitempty"`
	Degradation      string `json:"degradation,omitempty"`
	ChargingTime     string `json:"chargingTime,omitempty"`
	Installation     string `json:"installation,omitempty"`
	WarrantyPeriod   string `json:"warrantyPeriod,omitempty"`
	TemperatureRange string `json:"temperatureRange,omitempty"`
}

type Battery struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Price          float64               `json:"price"`
	Images         []string              `json:"images"`
	Status         ListingStatus         `json:"status"`
	Brand          string                `json:"brand"`
	Capacity       float64               `json:"capacity"`
	Year           int                   `json:"year"`
	Health         *float64              `json:"health"`
	Specifications BatterySpecifications `json:"specifications"`
	IsVerified     bool                  `json:"isVerified"`
	SellerID       string                `json:"sellerId"`
	Seller         *Seller               `json:"seller,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Listing is the product-agnostic view the checkout flow works with. Exactly
// one of Vehicle or Battery is set, matching Type.
type Listing struct {
	ID       string        `json:"id"`
	Type     ListingType   `json:"type"`
	Title    string        `json:"title"`
	Brand    string        `json:"brand"`
	Price    float64       `json:"price"`
	Status   ListingStatus `json:"status"`
	SellerID string        `json:"sellerId"`
	Seller   *Seller       `json:"seller,omitempty"`
	Image    string        `json:"image,omitempty"`

	Vehicle *Vehicle `json:"vehicle,omitempty"`
	Battery *Battery `json:"battery,omitempty"`
}

func (l *Listing) IsAvailable() bool {
	return l.Status == ListingStatusAvailable
}

func ListingFromVehicle(v *Vehicle) *Listing {
	l := &Listing{
		ID:       v.ID,
		Type:     ListingTypeVehicle,
		Title:    v.Title,
		Brand:    v.Brand,
		Price:    v.Price,
		Status:   v.Status,
		SellerID: v.SellerID,
		Seller:   v.Seller,
		Vehicle:  v,
	}
	if len(v.Images) > 0 {
		l.Image = v.Images[0]
	}
	return l
}

func ListingFromBattery(b *Battery) *Listing {
	l := &Listing{
		ID:       b.ID,
		Type:     ListingTypeBattery,
		Title:    b.Title,
		Brand:    b.Brand,
		Price:    b.Price,
		Status:   b.Status,
		SellerID: b.SellerID,
		Seller:   b.Seller,
		Battery:  b,
	}
	if len(b.Images) > 0 {
		l.Image = b.Images[0]
	}
	return l
}

// Page carries the pagination block the backend attaches to list responses.
type Page struct {
	Page         int `json:"page"`
	Limit        int `json:"limit"`
	TotalPages   int `json:"totalPages"`
	TotalResults int `json:"totalResults"`
}

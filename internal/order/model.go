package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Address is snapshotted onto the order at placement time and never mutated.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// Line is an immutable snapshot of one product's price and quantity at the
// moment the order was placed. Price and Total must not drift if the product
// later changes.
type Line struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`

	// Denormalized product display fields for the caller.
	ProductName   string   `json:"productName"`
	ProductImages []string `json:"productImages"`
	BrandName     string   `json:"brandName"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Status          Status          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           *string         `json:"notes,omitempty"`
	TrackingNumber  *string         `json:"trackingNumber,omitempty"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Lines           []Line          `json:"items"`
}

// PlaceInput carries everything the caller supplies at checkout. The owner
// identity comes from the authenticated session, never from the body.
type PlaceInput struct {
	ShippingAddress Address  `json:"shippingAddress"`
	BillingAddress  *Address `json:"billingAddress"`
	PaymentMethod   string   `json:"paymentMethod"`
	Notes           *string  `json:"notes"`
}

// InsufficientStockError names the first offending product so the caller can
// fix their cart. It never reveals anything beyond the caller's own lines.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

package user

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        *string   `json:"phone,omitempty"`
	Address      *string   `json:"address,omitempty"`
	City         *string   `json:"city,omitempty"`
	State        *string   `json:"state,omitempty"`
	ZipCode      *string   `json:"zipCode,omitempty"`
	Country      *string   `json:"country,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is the admin listing row, including activity counts.
type Summary struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Phone       *string   `json:"phone,omitempty"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	OrderCount  int       `json:"orderCount"`
	RepairCount int       `json:"repairCount"`
}

// OrderSummary is the recent-order line shown on the admin user detail view.
type OrderSummary struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// RepairSummary is the recent-ticket line shown on the admin user detail view.
type RepairSummary struct {
	ID           string    `json:"id"`
	TicketNumber string    `json:"ticketNumber"`
	Status       string    `json:"status"`
	DeviceType   string    `json:"deviceType"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Detail is the admin single-user view with recent activity.
type Detail struct {
	User
	Orders        []OrderSummary  `json:"orders"`
	RepairTickets []RepairSummary `json:"repairTickets"`
}

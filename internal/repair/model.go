package repair

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSubmitted      Status = "SUBMITTED"
	StatusUnderReview    Status = "UNDER_REVIEW"
	StatusApproved       Status = "APPROVED"
	StatusInProgress     Status = "IN_PROGRESS"
	StatusWaitingParts   Status = "WAITING_PARTS"
	StatusCompleted      Status = "COMPLETED"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusInProgress,
		StatusWaitingParts, StatusCompleted, StatusReadyForPickup, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Ticket struct {
	ID              string           `json:"id"`
	TicketNumber    string           `json:"ticketNumber"`
	UserID          string           `json:"userId"`
	DeviceType      string           `json:"deviceType"`
	Brand           string           `json:"brand"`
	Model           string           `json:"model"`
	Issue           string           `json:"issue"`
	Description     *string          `json:"description,omitempty"`
	Images          []string         `json:"images"`
	VideoURL        *string          `json:"videoUrl,omitempty"`
	CustomerNotes   *string          `json:"customerNotes,omitempty"`
	TechnicianNotes *string          `json:"technicianNotes,omitempty"`
	Status          Status           `json:"status"`
	Priority        Priority         `json:"priority"`
	EstimatedCost   *decimal.Decimal `json:"estimatedCost,omitempty"`
	ActualCost      *decimal.Decimal `json:"actualCost,omitempty"`
	EstimatedTime   *string          `json:"estimatedTime,omitempty"`
	AssignedTo      *string          `json:"assignedTo,omitempty"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`

	// Customer contact fields for the admin listing.
	Customer *Customer `json:"user,omitempty"`
}

type Customer struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
}

type CreateInput struct {
	DeviceType    string   `json:"deviceType"`
	Brand         string   `json:"brand"`
	Model         string   `json:"model"`
	Issue         string   `json:"issue"`
	Description   *string  `json:"description"`
	Images        []string `json:"images"`
	VideoURL      *string  `json:"videoUrl"`
	CustomerNotes *string  `json:"customerNotes"`
}

// StatusUpdateInput carries the optional fields a technician may set while
// moving a ticket through the pipeline.
type StatusUpdateInput struct {
	Status          Status           `json:"status"`
	EstimatedCost   *decimal.Decimal `json:"estimatedCost"`
	ActualCost      *decimal.Decimal `json:"actualCost"`
	EstimatedTime   *string          `json:"estimatedTime"`
	TechnicianNotes *string          `json:"technicianNotes"`
	Priority        *Priority        `json:"priority"`
	AssignedTo      *string          `json:"assignedTo"`
}

type ListFilter struct {
	Status     string
	Priority   string
	AssignedTo string
}

// NewTicketNumber mirrors the order-number scheme with a repair prefix.
func NewTicketNumber() string {
	return fmt.Sprintf("RPR-%d-%03d", time.Now().UnixMilli(), rand.IntN(1000))
}

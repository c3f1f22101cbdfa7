package order

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// ValidStatus reports whether s belongs to the fixed status vocabulary.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// allowedTransitions declares every legal move; anything undeclared is
// rejected. DELIVERED and CANCELLED are terminal. The legacy any-to-any
// behavior is only reachable through the AllowAnyStatusTransition flag.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusCancelled: true},
}

// CanTransition reports whether current may move to target.
func CanTransition(current, target Status) bool {
	return allowedTransitions[current][target]
}

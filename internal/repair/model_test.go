package repair

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{
		StatusSubmitted, StatusUnderReview, StatusApproved, StatusInProgress,
		StatusWaitingParts, StatusCompleted, StatusReadyForPickup, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, ValidStatus(s), "%s", s)
	}
	assert.False(t, ValidStatus("SHIPPED"))
	assert.False(t, ValidStatus(""))
}

func TestValidPriority(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		assert.True(t, ValidPriority(p), "%s", p)
	}
	assert.False(t, ValidPriority("CRITICAL"))
}

func TestNewTicketNumber(t *testing.T) {
	n := NewTicketNumber()
	assert.True(t, strings.HasPrefix(n, "RPR-"), "number: %s", n)
	assert.Len(t, strings.Split(n, "-"), 3)
}

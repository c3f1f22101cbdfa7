package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NumberPrefix starts every order number.
const NumberPrefix = "ORD"

// NewNumber builds a practically unique, human-readable order number from a
// millisecond timestamp and a short random suffix. Uniqueness is ultimately
// enforced by the order_number constraint; callers regenerate on collision.
func NewNumber() string {
	return fmt.Sprintf("%s-%d-%03d", NumberPrefix, time.Now().UnixMilli(), rand.IntN(1000))
}

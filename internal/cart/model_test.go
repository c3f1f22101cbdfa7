package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewView(t *testing.T) {
	items := []Item{
		{ID: "i1", Quantity: 2, Product: ProductInfo{Price: decimal.RequireFromString("999.00")}},
		{ID: "i2", Quantity: 1, Product: ProductInfo{Price: decimal.RequireFromString("49.99")}},
	}

	v := NewView(items)

	assert.Equal(t, 3, v.Count)
	assert.True(t, v.Total.Equal(decimal.RequireFromString("2047.99")), "total: %s", v.Total)
	assert.Len(t, v.Items, 2)
}

func TestNewViewEmpty(t *testing.T) {
	v := NewView(nil)

	assert.Equal(t, 0, v.Count)
	assert.True(t, v.Total.IsZero())
}

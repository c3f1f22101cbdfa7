package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductInfo is the live product snapshot shown next to a cart line.
type ProductInfo struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Images       []string        `json:"images"`
	CategoryName string          `json:"categoryName"`
	BrandName    string          `json:"brandName"`
}

// Item is one (owner, product, quantity) line awaiting checkout.
type Item struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	Product   ProductInfo `json:"product"`
	CreatedAt time.Time   `json:"createdAt"`
}

// View is the cart payload: items plus derived totals.
type View struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func NewView(items []Item) View {
	total := decimal.Zero
	count := 0
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		count += it.Quantity
	}
	return View{Items: items, Total: total, Count: count}
}

package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Condition = string

const (
	ConditionNew         Condition = "NEW"
	ConditionUsed        Condition = "USED"
	ConditionRefurbished Condition = "REFURBISHED"
)

type Product struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Description     *string           `json:"description,omitempty"`
	LongDescription *string           `json:"longDescription,omitempty"`
	Price           decimal.Decimal   `json:"price"`
	OriginalPrice   *decimal.Decimal  `json:"originalPrice,omitempty"`
	SKU             string            `json:"sku"`
	Stock           int               `json:"stock"`
	Images          []string          `json:"images"`
	Condition       Condition         `json:"condition"`
	Specifications  map[string]string `json:"specifications,omitempty"`
	Rating          float64           `json:"rating"`
	ReviewCount     int               `json:"reviewCount"`
	IsActive        bool              `json:"isActive"`
	IsFeatured      bool              `json:"isFeatured"`
	IsOnSale        bool              `json:"isOnSale"`
	CategoryID      string            `json:"categoryId"`
	CategoryName    string            `json:"categoryName"`
	CategorySlug    string            `json:"categorySlug"`
	BrandID         string            `json:"brandId"`
	BrandName       string            `json:"brandName"`
	BrandSlug       string            `json:"brandSlug"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description,omitempty"`
	Image        *string   `json:"image,omitempty"`
	IsActive     bool      `json:"isActive"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Brand struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Logo         *string   `json:"logo,omitempty"`
	IsActive     bool      `json:"isActive"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Sort vocabulary for product listings.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortNewest    = "newest"
	SortFeatured  = "featured"
)

type ListFilter struct {
	CategorySlug string
	BrandSlug    string
	Condition    string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Sort         string
	Page         int
	Limit        int
}

func (f ListFilter) normalized() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

// CacheKey serializes the filter into a stable cache key suffix.
func (f ListFilter) CacheKey() string {
	f = f.normalized()
	minP, maxP := "", ""
	if f.MinPrice != nil {
		minP = f.MinPrice.String()
	}
	if f.MaxPrice != nil {
		maxP = f.MaxPrice.String()
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%d|%d",
		f.CategorySlug, f.BrandSlug, f.Condition, minP, maxP, f.Search, f.Sort, f.Page, f.Limit)
}

type Page struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Pages int       `json:"pages"`
}

// Slugify turns a display name into a URL slug: lowercase with
// non-alphanumeric runs collapsed into single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

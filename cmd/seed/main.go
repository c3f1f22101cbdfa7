// Command seed loads a development database with an admin account and a
// small storefront of demo products. It is idempotent enough to re-run:
// duplicate slugs and emails are skipped, not fatal.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/catalog"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/config"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/db"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/user"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "seed ", log.LstdFlags)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatalf("db migrate: %v", err)
	}

	users := user.NewPostgresRepository(pool)
	products := catalog.NewPostgresRepository(pool)

	seedAdmin(ctx, logger, users)

	categories := map[string]string{}
	for _, name := range []string{"Smartphones", "Tablets", "Accessories", "Wearables"} {
		c, err := products.CreateCategory(ctx, catalog.CreateCategoryInput{Name: name})
		switch {
		case err == nil:
			categories[name] = c.ID
			logger.Printf("category %s", name)
		case errors.Is(err, catalog.ErrDuplicateSlug):
			logger.Printf("category %s already present", name)
		default:
			logger.Fatalf("create category %s: %v", name, err)
		}
	}

	brands := map[string]string{}
	for _, name := range []string{"Apple", "Samsung", "Google", "OnePlus"} {
		b, err := products.CreateBrand(ctx, catalog.CreateBrandInput{Name: name})
		switch {
		case err == nil:
			brands[name] = b.ID
			logger.Printf("brand %s", name)
		case errors.Is(err, catalog.ErrDuplicateSlug):
			logger.Printf("brand %s already present", name)
		default:
			logger.Fatalf("create brand %s: %v", name, err)
		}
	}

	if len(categories) == 0 || len(brands) == 0 {
		logger.Printf("catalog already seeded, skipping products")
		return
	}

	seedProducts(ctx, logger, products, categories, brands)
	logger.Printf("done")
}

func seedAdmin(ctx context.Context, logger *log.Logger, users user.Repository) {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Fatalf("hash admin password: %v", err)
	}

	admin := &user.User{
		Email:        "admin@mobilenexus.local",
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     "User",
		Role:         auth.RoleAdmin,
		IsActive:     true,
	}
	switch err := users.Create(ctx, admin); {
	case err == nil:
		logger.Printf("admin %s", admin.Email)
	case errors.Is(err, user.ErrEmailTaken):
		logger.Printf("admin %s already present", admin.Email)
	default:
		logger.Fatalf("create admin: %v", err)
	}
}

func seedProducts(ctx context.Context, logger *log.Logger, repo catalog.Repository, categories, brands map[string]string) {
	str := func(s string) *string { return &s }
	dec := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	inputs := []catalog.CreateProductInput{
		{
			Name:          "iPhone 15 Pro",
			Description:   str("6.1-inch Super Retina XDR display with the A17 Pro chip."),
			Price:         decimal.RequireFromString("999.00"),
			OriginalPrice: dec("1099.00"),
			CategoryID:    categories["Smartphones"],
			BrandID:       brands["Apple"],
			SKU:           "APL-IP15P-128",
			Stock:         25,
			Condition:     catalog.ConditionNew,
			Specifications: map[string]string{
				"display": "6.1-inch OLED",
				"chip":    "A17 Pro",
				"storage": "128GB",
			},
		},
		{
			Name:        "Galaxy S24 Ultra",
			Description: str("6.8-inch QHD+ display, 200MP camera, S Pen included."),
			Price:       decimal.RequireFromString("1199.00"),
			CategoryID:  categories["Smartphones"],
			BrandID:     brands["Samsung"],
			SKU:         "SAM-S24U-256",
			Stock:       18,
			Condition:   catalog.ConditionNew,
			Specifications: map[string]string{
				"display": "6.8-inch AMOLED",
				"camera":  "200MP",
				"storage": "256GB",
			},
		},
		{
			Name:        "Pixel 8a",
			Description: str("Refurbished Pixel 8a with Tensor G3 and 7 years of updates."),
			Price:       decimal.RequireFromString("399.00"),
			CategoryID:  categories["Smartphones"],
			BrandID:     brands["Google"],
			SKU:         "GGL-P8A-128-R",
			Stock:       7,
			Condition:   catalog.ConditionRefurbished,
			Specifications: map[string]string{
				"display": "6.1-inch OLED",
				"chip":    "Tensor G3",
				"storage": "128GB",
			},
		},
	}

	for _, in := range inputs {
		if _, err := repo.CreateProduct(ctx, in); err != nil {
			if errors.Is(err, catalog.ErrDuplicateSlug) {
				logger.Printf("product %s already present", in.Name)
				continue
			}
			logger.Fatalf("create product %s: %v", in.Name, err)
		}
		logger.Printf("product %s", in.Name)
	}
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrDuplicateSlug = errors.New("slug or sku already in use")
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ProductReview is the lightweight review row embedded in a product detail.
type ProductReview struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Title     *string   `json:"title,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

type Detail struct {
	Product
	Reviews []ProductReview `json:"reviews"`
}

type CreateProductInput struct {
	Name            string            `json:"name"`
	Description     *string           `json:"description"`
	LongDescription *string           `json:"longDescription"`
	Price           decimal.Decimal   `json:"price"`
	OriginalPrice   *decimal.Decimal  `json:"originalPrice"`
	CategoryID      string            `json:"categoryId"`
	BrandID         string            `json:"brandId"`
	SKU             string            `json:"sku"`
	Stock           int               `json:"stock"`
	Images          []string          `json:"images"`
	Condition       string            `json:"condition"`
	Specifications  map[string]string `json:"specifications"`
}

type UpdateProductInput struct {
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	LongDescription *string           `json:"longDescription"`
	Price           *decimal.Decimal  `json:"price"`
	OriginalPrice   *decimal.Decimal  `json:"originalPrice"`
	CategoryID      *string           `json:"categoryId"`
	BrandID         *string           `json:"brandId"`
	SKU             *string           `json:"sku"`
	Stock           *int              `json:"stock"`
	Images          []string          `json:"images"`
	Condition       *string           `json:"condition"`
	Specifications  map[string]string `json:"specifications"`
	IsFeatured      *bool             `json:"isFeatured"`
	IsOnSale        *bool             `json:"isOnSale"`
}

type CreateCategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

type CreateBrandInput struct {
	Name string  `json:"name"`
	Logo *string `json:"logo"`
}

type Repository interface {
	ListProducts(ctx context.Context, f ListFilter) (*Page, error)
	GetProduct(ctx context.Context, idOrSlug string) (*Detail, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*Product, error)
	DeactivateProduct(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, in CreateCategoryInput) (*Category, error)
	ListBrands(ctx context.Context) ([]Brand, error)
	CreateBrand(ctx context.Context, in CreateBrandInput) (*Brand, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `p.id, p.name, p.slug, p.description, p.long_description,
	p.price, p.original_price, p.sku, p.stock, p.images, p.condition, p.specifications,
	p.rating, p.review_count, p.is_active, p.is_featured, p.is_on_sale,
	p.category_id, c.name, c.slug, p.brand_id, b.name, b.slug, p.created_at, p.updated_at`

const productJoins = `FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN brands b ON b.id = p.brand_id`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.LongDescription,
		&p.Price, &p.OriginalPrice, &p.SKU, &p.Stock, &p.Images, &p.Condition, &p.Specifications,
		&p.Rating, &p.ReviewCount, &p.IsActive, &p.IsFeatured, &p.IsOnSale,
		&p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.BrandID, &p.BrandName, &p.BrandSlug,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context, f ListFilter) (*Page, error) {
	f = f.normalized()

	where := []string{"p.is_active = TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategorySlug != "" {
		where = append(where, "c.slug = "+arg(f.CategorySlug))
	}
	if f.BrandSlug != "" {
		where = append(where, "b.slug = "+arg(f.BrandSlug))
	}
	if f.Condition != "" {
		where = append(where, "p.condition = "+arg(f.Condition))
	}
	if f.MinPrice != nil {
		where = append(where, "p.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "p.price <= "+arg(*f.MaxPrice))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, "(p.name ILIKE "+arg(pattern)+" OR p.description ILIKE "+arg(pattern)+")")
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	orderBy := "p.created_at DESC"
	switch f.Sort {
	case SortPriceAsc:
		orderBy = "p.price ASC"
	case SortPriceDesc:
		orderBy = "p.price DESC"
	case SortRating:
		orderBy = "p.rating DESC"
	case SortNewest:
		orderBy = "p.created_at DESC"
	case SortFeatured:
		orderBy = "p.is_featured DESC, p.created_at DESC"
	}

	var total int
	countSQL := "SELECT COUNT(*) " + productJoins + " " + whereSQL
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	listSQL := "SELECT " + productColumns + " " + productJoins + " " + whereSQL +
		" ORDER BY " + orderBy +
		" LIMIT " + arg(f.Limit) + " OFFSET " + arg((f.Page-1)*f.Limit)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	items := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	pages := (total + f.Limit - 1) / f.Limit
	return &Page{Items: items, Total: total, Page: f.Page, Limit: f.Limit, Pages: pages}, nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, idOrSlug string) (*Detail, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` `+productJoins+`
		WHERE (p.id::text = $1 OR p.slug = $1) AND p.is_active = TRUE`, idOrSlug)
	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	d := &Detail{Product: *p}

	reviewRows, err := r.pool.Query(ctx, `
		SELECT r.id, r.rating, r.title, r.comment, u.first_name, u.last_name, r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC
		LIMIT 10
	`, p.ID)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer reviewRows.Close()
	for reviewRows.Next() {
		var rv ProductReview
		if err := reviewRows.Scan(&rv.ID, &rv.Rating, &rv.Title, &rv.Comment, &rv.FirstName, &rv.LastName, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		d.Reviews = append(d.Reviews, rv)
	}
	if err := reviewRows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return d, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	id := uuid.NewString()
	images := in.Images
	if images == nil {
		images = []string{}
	}
	condition := in.Condition
	if condition == "" {
		condition = ConditionNew
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, name, slug, description, long_description, price, original_price,
			sku, stock, images, condition, specifications, category_id, brand_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, id, in.Name, Slugify(in.Name), in.Description, in.LongDescription, in.Price, in.OriginalPrice,
		in.SKU, in.Stock, images, condition, in.Specifications, in.CategoryID, in.BrandID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}

	d, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d.Product, nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*Product, error) {
	set := []string{"updated_at = now()"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if in.Name != nil {
		set = append(set, "name = "+arg(*in.Name), "slug = "+arg(Slugify(*in.Name)))
	}
	if in.Description != nil {
		set = append(set, "description = "+arg(*in.Description))
	}
	if in.LongDescription != nil {
		set = append(set, "long_description = "+arg(*in.LongDescription))
	}
	if in.Price != nil {
		set = append(set, "price = "+arg(*in.Price))
	}
	if in.OriginalPrice != nil {
		set = append(set, "original_price = "+arg(*in.OriginalPrice))
	}
	if in.CategoryID != nil {
		set = append(set, "category_id = "+arg(*in.CategoryID))
	}
	if in.BrandID != nil {
		set = append(set, "brand_id = "+arg(*in.BrandID))
	}
	if in.SKU != nil {
		set = append(set, "sku = "+arg(*in.SKU))
	}
	if in.Stock != nil {
		set = append(set, "stock = "+arg(*in.Stock))
	}
	if in.Images != nil {
		set = append(set, "images = "+arg(in.Images))
	}
	if in.Condition != nil {
		set = append(set, "condition = "+arg(*in.Condition))
	}
	if in.Specifications != nil {
		set = append(set, "specifications = "+arg(in.Specifications))
	}
	if in.IsFeatured != nil {
		set = append(set, "is_featured = "+arg(*in.IsFeatured))
	}
	if in.IsOnSale != nil {
		set = append(set, "is_on_sale = "+arg(*in.IsOnSale))
	}

	sql := "UPDATE products SET " + strings.Join(set, ", ") + " WHERE id = " + arg(id)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	d, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d.Product, nil
}

// DeactivateProduct performs the soft delete used by the admin API.
func (r *PostgresRepository) DeactivateProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.slug, c.description, c.image, c.is_active,
		       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.is_active),
		       c.created_at
		FROM categories c
		WHERE c.is_active = TRUE
		ORDER BY c.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.IsActive, &c.ProductCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return categories, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, in CreateCategoryInput) (*Category, error) {
	c := Category{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Slug:     Slugify(in.Name),
		IsActive: true,
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, slug, description, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING description, image, created_at
	`, c.ID, c.Name, c.Slug, in.Description, in.Image)
	if err := row.Scan(&c.Description, &c.Image, &c.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) ListBrands(ctx context.Context) ([]Brand, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.name, b.slug, b.logo, b.is_active,
		       (SELECT COUNT(*) FROM products p WHERE p.brand_id = b.id AND p.is_active),
		       b.created_at
		FROM brands b
		WHERE b.is_active = TRUE
		ORDER BY b.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select brands: %w", err)
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Logo, &b.IsActive, &b.ProductCount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return brands, nil
}

func (r *PostgresRepository) CreateBrand(ctx context.Context, in CreateBrandInput) (*Brand, error) {
	b := Brand{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Slug:     Slugify(in.Name),
		IsActive: true,
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO brands (id, name, slug, logo)
		VALUES ($1, $2, $3, $4)
		RETURNING logo, created_at
	`, b.ID, b.Name, b.Slug, in.Logo)
	if err := row.Scan(&b.Logo, &b.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("insert brand: %w", err)
	}
	return &b, nil
}

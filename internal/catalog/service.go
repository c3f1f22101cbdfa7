package catalog

import (
	"context"
	"log"
	"time"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/cache"
)

// Cache TTLs mirror how long each read endpoint may serve stale data.
const (
	productListTTL   = 5 * time.Minute
	productDetailTTL = 10 * time.Minute
	categoryListTTL  = 30 * time.Minute
	brandListTTL     = 30 * time.Minute
)

// Service fronts the repository with a read-side cache. Cache errors are
// logged and the store answers instead; writes invalidate affected keys.
type Service struct {
	repo   Repository
	cache  cache.Cache
	logger *log.Logger
}

func NewService(repo Repository, c cache.Cache, logger *log.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

func (s *Service) ListProducts(ctx context.Context, f ListFilter) (*Page, error) {
	key := "products:" + f.CacheKey()

	var cached Page
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Printf("cache get %s: %v", key, err)
	}

	page, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, page, productListTTL); err != nil {
		s.logger.Printf("cache set %s: %v", key, err)
	}
	return page, nil
}

func (s *Service) GetProduct(ctx context.Context, idOrSlug string) (*Detail, error) {
	key := "product:" + idOrSlug

	var cached Detail
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Printf("cache get %s: %v", key, err)
	}

	d, err := s.repo.GetProduct(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, d, productDetailTTL); err != nil {
		s.logger.Printf("cache set %s: %v", key, err)
	}
	return d, nil
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	p, err := s.repo.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx, p.ID, p.Slug)
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, in UpdateProductInput) (*Product, error) {
	p, err := s.repo.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx, p.ID, p.Slug)
	return p, nil
}

func (s *Service) DeactivateProduct(ctx context.Context, id string) error {
	if err := s.repo.DeactivateProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateProducts(ctx, id)
	return nil
}

// InvalidateProduct drops the cached detail and listings for a product whose
// derived fields changed outside this package (review aggregates, stock).
func (s *Service) InvalidateProduct(ctx context.Context, idOrSlugs ...string) {
	s.invalidateProducts(ctx, idOrSlugs...)
}

func (s *Service) invalidateProducts(ctx context.Context, idOrSlugs ...string) {
	keys := make([]string, 0, len(idOrSlugs))
	for _, v := range idOrSlugs {
		if v != "" {
			keys = append(keys, "product:"+v)
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Printf("cache delete product keys: %v", err)
	}
	if err := s.cache.DeletePrefix(ctx, "products:"); err != nil {
		s.logger.Printf("cache delete product listings: %v", err)
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	const key = "categories:all"

	var cached []Category
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Printf("cache get %s: %v", key, err)
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, categories, categoryListTTL); err != nil {
		s.logger.Printf("cache set %s: %v", key, err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryInput) (*Category, error) {
	c, err := s.repo.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, "categories:all"); err != nil {
		s.logger.Printf("cache delete categories: %v", err)
	}
	return c, nil
}

func (s *Service) ListBrands(ctx context.Context) ([]Brand, error) {
	const key = "brands:all"

	var cached []Brand
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		s.logger.Printf("cache get %s: %v", key, err)
	}

	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, brands, brandListTTL); err != nil {
		s.logger.Printf("cache set %s: %v", key, err)
	}
	return brands, nil
}

func (s *Service) CreateBrand(ctx context.Context, in CreateBrandInput) (*Brand, error) {
	b, err := s.repo.CreateBrand(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, "brands:all"); err != nil {
		s.logger.Printf("cache delete brands: %v", err)
	}
	return b, nil
}

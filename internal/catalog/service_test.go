package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/cache"
)

type fakeCache struct {
	entries map[string][]byte
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) error {
	raw, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *fakeCache) DeletePrefix(_ context.Context, prefix string) error {
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

type fakeRepo struct {
	Repository

	listCalls int
	getCalls  int
	product   *Product
}

func (r *fakeRepo) ListProducts(context.Context, ListFilter) (*Page, error) {
	r.listCalls++
	return &Page{Items: []Product{*r.product}, Total: 1, Page: 1, Limit: 20, Pages: 1}, nil
}

func (r *fakeRepo) GetProduct(context.Context, string) (*Detail, error) {
	r.getCalls++
	return &Detail{Product: *r.product}, nil
}

func (r *fakeRepo) UpdateProduct(context.Context, string, UpdateProductInput) (*Product, error) {
	return r.product, nil
}

func testProduct() *Product {
	return &Product{ID: "p1", Name: "iPhone 15 Pro", Slug: "iphone-15-pro", Stock: 5}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestServiceListProducts_CachesSecondRead(t *testing.T) {
	repo := &fakeRepo{product: testProduct()}
	c := newFakeCache()
	svc := NewService(repo, c, discardLogger())
	ctx := context.Background()

	first, err := svc.ListProducts(ctx, ListFilter{})
	require.NoError(t, err)
	second, err := svc.ListProducts(ctx, ListFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls, "second read must come from cache")
	assert.Equal(t, first.Items[0].ID, second.Items[0].ID)
}

func TestServiceListProducts_DistinctFiltersDistinctKeys(t *testing.T) {
	repo := &fakeRepo{product: testProduct()}
	c := newFakeCache()
	svc := NewService(repo, c, discardLogger())
	ctx := context.Background()

	_, err := svc.ListProducts(ctx, ListFilter{})
	require.NoError(t, err)
	_, err = svc.ListProducts(ctx, ListFilter{Search: "pro"})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, 2, c.sets)
}

func TestServiceUpdateProduct_InvalidatesListingsAndDetail(t *testing.T) {
	repo := &fakeRepo{product: testProduct()}
	c := newFakeCache()
	svc := NewService(repo, c, discardLogger())
	ctx := context.Background()

	_, err := svc.ListProducts(ctx, ListFilter{})
	require.NoError(t, err)
	_, err = svc.GetProduct(ctx, "iphone-15-pro")
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, "p1", UpdateProductInput{})
	require.NoError(t, err)

	_, err = svc.ListProducts(ctx, ListFilter{})
	require.NoError(t, err)
	_, err = svc.GetProduct(ctx, "iphone-15-pro")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls, "listing cache must be dropped on update")
	assert.Equal(t, 2, repo.getCalls, "detail cache must be dropped on update")
}

func TestServiceInvalidateProduct(t *testing.T) {
	repo := &fakeRepo{product: testProduct()}
	c := newFakeCache()
	svc := NewService(repo, c, discardLogger())
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.getCalls)

	svc.InvalidateProduct(ctx, "p1")

	_, err = svc.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.getCalls)
}

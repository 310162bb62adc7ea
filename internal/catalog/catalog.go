// Package catalog caches the product listing the shopper is browsing:
// page 1 replaces the list, later pages append.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/client"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/notice"
)

const DefaultPageSize = 20

type API interface {
	Products(ctx context.Context, q client.ProductQuery) (client.ProductPage, error)
	NewArrivals(ctx context.Context) ([]models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
}

// Query selects the listing: a category id, a free-text search, or both.
type Query struct {
	Category string
	Search   string
}

type Store struct {
	api      API
	notifier notice.Notifier
	logger   *slog.Logger
	pageSize int

	mu          sync.RWMutex
	query       Query
	products    []models.Product
	total       int64
	page        int
	hasMore     bool
	newArrivals []models.Product
	categories  []models.Category
}

func New(api API, notifier notice.Notifier, logger *slog.Logger, pageSize int) *Store {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Store{api: api, notifier: notifier, logger: logger, pageSize: pageSize}
}

// Load fetches page 1 of q and replaces the listing.
func (s *Store) Load(ctx context.Context, q Query) error {
	page, err := s.api.Products(ctx, client.ProductQuery{Category: q.Category, Search: q.Search, Page: 1, Limit: s.pageSize})
	if err != nil {
		return s.failed("Failed to load products.", err)
	}

	s.mu.Lock()
	s.query = q
	s.products = page.Products
	s.total = page.Total
	s.page = 1
	s.hasMore = page.HasMore
	s.mu.Unlock()
	return nil
}

// LoadMore appends the next page of the current query. It is a no-op when
// the last fetch reported no more pages.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.RLock()
	q, next, more := s.query, s.page+1, s.hasMore
	s.mu.RUnlock()
	if !more {
		return nil
	}

	page, err := s.api.Products(ctx, client.ProductQuery{Category: q.Category, Search: q.Search, Page: next, Limit: s.pageSize})
	if err != nil {
		return s.failed("Failed to load more products.", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query != q || s.page+1 != next {
		// the listing changed underneath this fetch
		return nil
	}
	s.products = append(s.products, page.Products...)
	s.total = page.Total
	s.page = next
	s.hasMore = page.HasMore
	return nil
}

// Refresh reloads page 1 of the current query.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	q := s.query
	s.mu.RUnlock()
	return s.Load(ctx, q)
}

// FetchAll loads the whole catalog in one request for management views.
// The server only honors it for admins.
func (s *Store) FetchAll(ctx context.Context) ([]models.Product, error) {
	page, err := s.api.Products(ctx, client.ProductQuery{All: true})
	if err != nil {
		return nil, s.failed("Failed to load products.", err)
	}

	s.mu.Lock()
	s.query = Query{}
	s.products = page.Products
	s.total = page.Total
	s.page = 1
	s.hasMore = false
	s.mu.Unlock()
	return append([]models.Product(nil), page.Products...), nil
}

func (s *Store) NewArrivals(ctx context.Context) ([]models.Product, error) {
	products, err := s.api.NewArrivals(ctx)
	if err != nil {
		return nil, s.failed("Failed to load new arrivals.", err)
	}
	s.mu.Lock()
	s.newArrivals = products
	s.mu.Unlock()
	return append([]models.Product(nil), products...), nil
}

func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.api.Categories(ctx)
	if err != nil {
		return nil, s.failed("Failed to load categories.", err)
	}
	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
	return append([]models.Category(nil), categories...), nil
}

func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product(nil), s.products...)
}

func (s *Store) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore
}

func (s *Store) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

func (s *Store) Query() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Product looks id up in the cached listing and new arrivals.
func (s *Store) Product(id primitive.ObjectID) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range [][]models.Product{s.products, s.newArrivals} {
		for _, p := range list {
			if p.ID == id {
				return p, true
			}
		}
	}
	return models.Product{}, false
}

// DecrementStock lowers the cached stock of each ordered product, floored
// at zero. Only the local cache changes; the server keeps its own count.
func (s *Store) DecrementStock(items []models.OrderItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		decrement(s.products, it)
		decrement(s.newArrivals, it)
	}
}

func decrement(list []models.Product, it models.OrderItem) {
	for i := range list {
		if list[i].ID == it.ProductID {
			list[i].StockQuantity -= it.Quantity
			if list[i].StockQuantity < 0 {
				list[i].StockQuantity = 0
			}
		}
	}
}

func (s *Store) failed(msg string, err error) error {
	s.logger.Warn(msg, slog.String("error", err.Error()))
	s.notifier.Notify(notice.Notice{Kind: notice.Error, Message: msg})
	return err
}

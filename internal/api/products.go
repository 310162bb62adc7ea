package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/logging"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/store"
)

const newArrivalsLimit = 10

type productRequest struct {
	Name          string         `json:"name" binding:"required"`
	Price         float64        `json:"price" binding:"gte=0"`
	OriginalPrice *float64       `json:"originalPrice" binding:"omitempty,gte=0"`
	Description   string         `json:"description"`
	StockQuantity int            `json:"stockQuantity" binding:"gte=0"`
	CategoryID    string         `json:"categoryId" binding:"required"`
	Images        []models.Image `json:"images"`
	Tags          []string       `json:"tags"`
	OutOfStock    bool           `json:"outOfStock"`
}

func (r productRequest) toProduct() (models.Product, error) {
	categoryID, err := store.ParseID(r.CategoryID)
	if err != nil {
		return models.Product{}, err
	}
	var tags []string
	for _, t := range r.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t == models.TagNew || t == models.TagSale {
			tags = append(tags, t)
		}
	}
	return models.Product{
		Name:          strings.TrimSpace(r.Name),
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Description:   r.Description,
		StockQuantity: r.StockQuantity,
		CategoryID:    categoryID,
		Images:        r.Images,
		Tags:          tags,
		OutOfStock:    r.OutOfStock,
	}, nil
}

func (s *Server) listProducts(c *gin.Context) {
	q := store.ProductQuery{
		CategoryID: c.Query("category"),
		Search:     c.Query("search"),
		All:        c.Query("all") == "true",
	}
	q.Page, _ = strconv.Atoi(c.Query("page"))
	q.Limit, _ = strconv.Atoi(c.Query("limit"))
	if q.All && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	q = q.Normalize()

	ctx := c.Request.Context()
	var page store.ProductPage
	var err error
	if q.All {
		page, err = s.stores.Products.List(ctx, q)
	} else {
		err = s.cache.Fetch(ctx, q.CacheKey(), &page, func() (any, error) {
			return s.stores.Products.List(ctx, q)
		})
	}
	if err != nil {
		s.fail(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) newArrivals(c *gin.Context) {
	ctx := c.Request.Context()
	var products []models.Product
	err := s.cache.Fetch(ctx, "products:new-arrivals", &products, func() (any, error) {
		return s.stores.Products.NewArrivals(ctx, newArrivalsLimit)
	})
	if err != nil {
		s.fail(c, err, "list new arrivals")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := s.stores.Products.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := req.toProduct()
	if err != nil {
		badRequest(c, "invalid categoryId")
		return
	}
	created, err := s.stores.Products.Create(c.Request.Context(), p)
	if err != nil {
		s.fail(c, err, "create product")
		return
	}
	s.invalidateProducts(c.Request.Context())
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := req.toProduct()
	if err != nil {
		badRequest(c, "invalid categoryId")
		return
	}
	p.ID = id
	updated, err := s.stores.Products.Update(c.Request.Context(), p)
	if err != nil {
		s.fail(c, err, "update product")
		return
	}
	s.invalidateProducts(c.Request.Context())
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.stores.Products.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err, "delete product")
		return
	}
	s.invalidateProducts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted."})
}

func (s *Server) countView(c *gin.Context) {
	s.bumpCounter(c, store.CounterViews)
}

func (s *Server) countCartAdd(c *gin.Context) {
	s.bumpCounter(c, store.CounterAddToCart)
}

func (s *Server) bumpCounter(c *gin.Context, counter string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.stores.Products.IncrementCounter(c.Request.Context(), id, counter); err != nil {
		s.fail(c, err, "update "+counter)
		return
	}
	c.Status(http.StatusNoContent)
}

// invalidateProducts drops cached listings after a catalog or stock change.
func (s *Server) invalidateProducts(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "products:*"); err != nil {
		logging.FromContext(ctx, s.logger).Warn("invalidate product cache", slog.String("error", err.Error()))
	}
}

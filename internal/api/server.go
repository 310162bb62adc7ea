// Package api exposes the storefront REST endpoints over gin.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/cache"
	"teakspice-storefront/internal/events"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/store"
)

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c models.Category) (models.Category, error)
	Update(ctx context.Context, c models.Category) (models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	List(ctx context.Context, q store.ProductQuery) (store.ProductPage, error)
	NewArrivals(ctx context.Context, limit int) ([]models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Update(ctx context.Context, p models.Product) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DecrementStock(ctx context.Context, items []models.OrderItem) error
	IncrementCounter(ctx context.Context, id primitive.ObjectID, counter string) error
}

type OrderStore interface {
	List(ctx context.Context, f store.OrderFilter) ([]models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	Create(ctx context.Context, o models.Order) (models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, patch store.UserPatch) (models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Addresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	AddAddress(ctx context.Context, userID primitive.ObjectID, a models.Address) (models.Address, error)
	UpdateAddress(ctx context.Context, userID primitive.ObjectID, a models.Address) (models.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error
}

type WishlistStore interface {
	Get(ctx context.Context, userID primitive.ObjectID) (models.Wishlist, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error)
	Remove(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type Stores struct {
	Categories CategoryStore
	Products   ProductStore
	Orders     OrderStore
	Users      UserStore
	Wishlists  WishlistStore
}

type Server struct {
	stores Stores
	auth   *auth.Service
	tokens *auth.Tokens
	cache  *cache.Cache
	events events.Publisher
	logger *slog.Logger
	ping   func(ctx context.Context) error

	publishTimeout time.Duration
	pending        sync.WaitGroup
}

type Options struct {
	Stores Stores
	Auth   *auth.Service
	Tokens *auth.Tokens
	Cache  *cache.Cache
	Events events.Publisher
	Logger *slog.Logger
	Ping   func(ctx context.Context) error

	// PublishTimeout bounds each background event publish.
	PublishTimeout time.Duration
}

const defaultPublishTimeout = 10 * time.Second

func NewServer(opts Options) *Server {
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	if opts.Ping == nil {
		opts.Ping = func(context.Context) error { return nil }
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	return &Server{
		stores: opts.Stores,
		auth:   opts.Auth,
		tokens: opts.Tokens,
		cache:  opts.Cache,
		events: opts.Events,
		logger: opts.Logger,
		ping:   opts.Ping,

		publishTimeout: opts.PublishTimeout,
	}
}

// Drain blocks until every background event publish has finished.
func (s *Server) Drain() {
	s.pending.Wait()
}

// Router builds the gin engine with every storefront route.
func (s *Server) Router(allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", s.health)

	required := s.tokens.Required()
	admin := []gin.HandlerFunc{required, auth.AdminOnly()}

	api := r.Group("/api")
	{
		a := api.Group("/auth")
		a.POST("/register", s.register)
		a.GET("/verify-email", s.verifyEmail)
		a.POST("/login", s.login)

		api.GET("/categories", s.listCategories)
		api.POST("/categories", append(admin, s.createCategory)...)
		api.PUT("/categories/:id", append(admin, s.updateCategory)...)
		api.DELETE("/categories/:id", append(admin, s.deleteCategory)...)

		api.GET("/products", s.tokens.Optional(), s.listProducts)
		api.GET("/products/new-arrivals", s.newArrivals)
		api.GET("/products/:id", s.getProduct)
		api.POST("/products", append(admin, s.createProduct)...)
		api.PUT("/products/:id", append(admin, s.updateProduct)...)
		api.DELETE("/products/:id", append(admin, s.deleteProduct)...)
		api.POST("/products/:id/view", s.countView)
		api.POST("/products/:id/cart-add", s.countCartAdd)

		api.GET("/orders", required, s.listOrders)
		api.GET("/orders/:id", required, s.getOrder)
		api.POST("/orders", s.tokens.Optional(), s.createOrder)
		api.PUT("/orders/:id", append(admin, s.updateOrderStatus)...)
		api.DELETE("/orders/:id", append(admin, s.deleteOrder)...)

		api.GET("/users", append(admin, s.listUsers)...)
		api.POST("/users", append(admin, s.createUser)...)
		api.GET("/users/:id", required, s.getUser)
		api.PUT("/users/:id", required, s.updateUser)
		api.DELETE("/users/:id", required, s.deleteUser)
		api.GET("/users/:id/addresses", required, s.listAddresses)
		api.POST("/users/:id/addresses", required, s.addAddress)
		api.PUT("/users/:id/addresses/:addressId", required, s.updateAddress)
		api.DELETE("/users/:id/addresses/:addressId", required, s.deleteAddress)

		w := api.Group("/wishlist", required)
		w.GET("", s.getWishlist)
		w.POST("/add", s.addToWishlist)
		w.DELETE("/remove", s.removeFromWishlist)
		w.DELETE("/clear", s.clearWishlist)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/cache"
	"teakspice-storefront/internal/events"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/store"
)

var ctx = context.Background()

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	server     *Server
	router     *gin.Engine
	categories *memCategories
	products   *memProducts
	orders     *memOrders
	users      *memUsers
	wishlists  *memWishlists
	events     *recordingPublisher

	userID     primitive.ObjectID
	userToken  string
	adminToken string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil)
}

// newHarnessWith lets a test adjust the server options before the router is built.
func newHarnessWith(t *testing.T, adjust func(*Options)) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokens("test-secret", time.Hour)

	h := &harness{
		categories: &memCategories{},
		products:   &memProducts{},
		orders:     &memOrders{},
		users:      newMemUsers(),
		wishlists:  newMemWishlists(),
		events:     &recordingPublisher{},
	}

	hash, err := auth.HashPassword("pepper1")
	require.NoError(t, err)
	user, err := h.users.Create(ctx, models.User{Name: "Asha", Email: "asha@example.com", Password: hash})
	require.NoError(t, err)
	admin, err := h.users.Create(ctx, models.User{Name: "Root", Email: "root@example.com", Password: hash, Role: models.RoleAdmin})
	require.NoError(t, err)
	h.userID = user.ID
	h.userToken, _ = tokens.Issue(user.ID.Hex(), models.RoleUser)
	h.adminToken, _ = tokens.Issue(admin.ID.Hex(), models.RoleAdmin)

	opts := Options{
		Stores: Stores{
			Categories: h.categories,
			Products:   h.products,
			Orders:     h.orders,
			Users:      h.users,
			Wishlists:  h.wishlists,
		},
		Auth:   auth.NewService(h.users, tokens, "http://shop.test", logger),
		Tokens: tokens,
		Events: h.events,
		Logger: logger,
	}
	if adjust != nil {
		adjust(&opts)
	}
	srv := NewServer(opts)
	h.server = srv
	h.router = srv.Router([]string{"http://localhost:3000"})
	return h
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (h *harness) seedProduct(name string, stock int, price float64) models.Product {
	p, _ := h.products.Create(ctx, models.Product{Name: name, StockQuantity: stock, Price: price, CategoryID: primitive.NewObjectID()})
	return p
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, "trace-42", w.Header().Get(RequestIDHeader))
}

func TestAddCategoryTwiceIsRejected(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/categories", h.adminToken, gin.H{"name": "Shoes"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(http.MethodPost, "/api/categories", h.adminToken, gin.H{"name": "Shoes"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Category already exists.", decode[map[string]string](t, w)["error"])

	w = h.do(http.MethodGet, "/api/categories", "", nil)
	assert.Len(t, decode[[]models.Category](t, w), 1)
}

func TestCategoryWritesRequireAdmin(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodPost, "/api/categories", "", gin.H{"name": "Tea"}).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/categories", h.userToken, gin.H{"name": "Tea"}).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/categories", h.adminToken, gin.H{}).Code)
}

func TestCategoryDeleteDoesNotCascade(t *testing.T) {
	h := newHarness(t)
	cat, _ := h.categories.Create(ctx, models.Category{Name: "Spices"})
	h.products.items = append(h.products.items, models.Product{ID: primitive.NewObjectID(), Name: "Clove", CategoryID: cat.ID})

	w := h.do(http.MethodDelete, "/api/categories/"+cat.ID.Hex(), h.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, h.products.items, 1)
	assert.Equal(t, cat.ID, h.products.items[0].CategoryID)
}

func TestListProductsPagination(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 5; i++ {
		h.seedProduct("Pepper", 3, 2)
	}

	w := h.do(http.MethodGet, "/api/products?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[store.ProductPage](t, w)
	assert.Len(t, page.Products, 2)
	assert.EqualValues(t, 5, page.Total)
	assert.True(t, page.HasMore)

	w = h.do(http.MethodGet, "/api/products?page=3&limit=2", "", nil)
	page = decode[store.ProductPage](t, w)
	assert.Len(t, page.Products, 1)
	assert.False(t, page.HasMore)
}

func TestListProductsFetchAllIsAdminOnly(t *testing.T) {
	h := newHarness(t)
	h.seedProduct("Pepper", 3, 2)

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/products?all=true", h.userToken, nil).Code)

	w := h.do(http.MethodGet, "/api/products?all=true", h.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.FetchAllLimit, decode[store.ProductPage](t, w).Limit)
}

func TestCreateProductValidation(t *testing.T) {
	h := newHarness(t)
	cat, _ := h.categories.Create(ctx, models.Category{Name: "Tea"})

	w := h.do(http.MethodPost, "/api/products", h.adminToken, gin.H{"name": "Chai", "price": 4.5, "stockQuantity": -1, "categoryId": cat.ID.Hex()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/products", h.adminToken, gin.H{"name": "Chai", "price": 4.5, "stockQuantity": 3, "categoryId": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/products", h.adminToken, gin.H{
		"name": "Chai", "price": 4.5, "stockQuantity": 3, "categoryId": cat.ID.Hex(), "tags": []string{"NEW", "bogus"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	p := decode[models.Product](t, w)
	assert.Equal(t, []string{models.TagNew}, p.Tags)
	assert.Equal(t, cat.ID, p.CategoryID)
}

func TestGetProductBadAndMissingID(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/products/zzz", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/products/"+primitive.NewObjectID().Hex(), "", nil).Code)
}

func TestEngagementCounters(t *testing.T) {
	h := newHarness(t)
	p := h.seedProduct("Clove", 3, 1)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/api/products/"+p.ID.Hex()+"/view", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, "/api/products/"+p.ID.Hex()+"/cart-add", "", nil).Code)
	assert.Equal(t, 1, h.products.items[0].ViewCount)
	assert.Equal(t, 1, h.products.items[0].AddToCartCount)
}

func orderBody(p models.Product, qty int, method models.PaymentMethod) gin.H {
	return gin.H{
		"customerName":  "Asha",
		"customerPhone": "+91 98765 43210",
		"shipping":      gin.H{"street": "1 Spice Rd", "city": "Kochi"},
		"items": []gin.H{
			{"productId": p.ID.Hex(), "name": p.Name, "quantity": qty, "price": p.Price},
		},
		"total":         p.Price * float64(qty),
		"paymentMethod": method,
	}
}

func TestCreateOrderDecrementsStockAndPublishes(t *testing.T) {
	h := newHarness(t)
	p := h.seedProduct("Cardamom", 5, 10)

	w := h.do(http.MethodPost, "/api/orders", h.userToken, orderBody(p, 3, models.PaymentOnline))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[struct {
		Order models.Order `json:"order"`
	}](t, w)
	assert.Equal(t, models.StatusNew, resp.Order.Status)
	assert.Equal(t, 30.0, resp.Order.Total)
	require.NotNil(t, resp.Order.UserID)
	assert.Equal(t, h.userID, *resp.Order.UserID)

	assert.Equal(t, 2, h.products.items[0].StockQuantity)
	h.server.Drain()
	require.Len(t, h.events.events, 1)
	assert.Equal(t, "order.created", h.events.events[0].Type)
}

func TestCreateOrderAsGuest(t *testing.T) {
	h := newHarness(t)
	p := h.seedProduct("Cardamom", 5, 10)

	w := h.do(http.MethodPost, "/api/orders", "", orderBody(p, 1, ""))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, h.orders.items[0].UserID)
	assert.Equal(t, models.PaymentCOD, h.orders.items[0].PaymentMethod)
}

func TestCreateOrderStockIsNotFloored(t *testing.T) {
	h := newHarness(t)
	p := h.seedProduct("Saffron", 1, 50)

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/orders", "", orderBody(p, 1, models.PaymentCOD)).Code)
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/orders", "", orderBody(p, 1, models.PaymentCOD)).Code)
	assert.Equal(t, -1, h.products.items[0].StockQuantity)
	assert.Len(t, h.orders.items, 2)
}

func TestCreateOrderValidation(t *testing.T) {
	h := newHarness(t)
	p := h.seedProduct("Cardamom", 5, 10)

	body := orderBody(p, 1, models.PaymentCOD)
	body["items"] = []gin.H{}
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/orders", "", body).Code)

	body = orderBody(p, 1, models.PaymentCOD)
	delete(body, "shipping")
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/orders", "", body).Code)

	body["storePickup"] = true
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/orders", "", body).Code)

	body = orderBody(p, 1, "Crypto")
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/orders", "", body).Code)

	body = orderBody(p, 0, models.PaymentCOD)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/orders", "", body).Code)
}

func TestCreateOrderStoreFailureLeavesStock(t *testing.T) {
	h := newHarness(t)
	h.orders.fail = errors.New("write concern timeout")
	p := h.seedProduct("Cardamom", 5, 10)

	w := h.do(http.MethodPost, "/api/orders", "", orderBody(p, 2, models.PaymentCOD))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 5, h.products.items[0].StockQuantity)
	h.server.Drain()
	assert.Empty(t, h.events.events)
}

func TestUpdateOrderStatusHasNoTransitionGuard(t *testing.T) {
	h := newHarness(t)
	o, _ := h.orders.Create(ctx, models.Order{Items: []models.OrderItem{{Quantity: 1, Price: 1}}})

	w := h.do(http.MethodPut, "/api/orders/"+o.ID.Hex(), h.adminToken, gin.H{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPut, "/api/orders/"+o.ID.Hex(), h.adminToken, gin.H{"status": "New"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusNew, decode[models.Order](t, w).Status)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPut, "/api/orders/"+o.ID.Hex(), h.adminToken, gin.H{"status": "Lost"}).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, "/api/orders/"+o.ID.Hex(), h.userToken, gin.H{"status": "Accepted"}).Code)
	h.server.Drain()
	assert.Len(t, h.events.events, 2)
}

func TestListOrdersScopedToCaller(t *testing.T) {
	h := newHarness(t)
	other := primitive.NewObjectID()
	h.orders.Create(ctx, models.Order{UserID: &h.userID})
	h.orders.Create(ctx, models.Order{UserID: &other})
	h.orders.Create(ctx, models.Order{})

	w := h.do(http.MethodGet, "/api/orders", h.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Order](t, w), 1)

	w = h.do(http.MethodGet, "/api/orders", h.adminToken, nil)
	assert.Len(t, decode[[]models.Order](t, w), 3)

	otherOrder := h.orders.items[1]
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/orders/"+otherOrder.ID.Hex(), h.userToken, nil).Code)
}

func TestRegisterVerifyLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ravi", "email": "ravi@example.com", "password": "masala1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "masala1")

	var token string
	for _, u := range h.users.items {
		if u.Email == "ravi@example.com" {
			token = u.VerifyToken
		}
	}
	require.NotEmpty(t, token)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/auth/verify-email?token="+token, "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/auth/verify-email?token="+token, "", nil).Code)

	w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ravi@example.com", "password": "masala1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[auth.LoginResult](t, w).Token)

	w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ravi@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ravi", "email": "ravi@example.com", "password": "masala1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserAccessRules(t *testing.T) {
	h := newHarness(t)
	self := "/api/users/" + h.userID.Hex()

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, self, h.userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), h.userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/users", h.userToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, self, h.userToken, gin.H{"role": "admin"}).Code)

	w := h.do(http.MethodPut, self, h.adminToken, gin.H{"banned": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, h.users.items[h.userID].Banned)

	w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "pepper1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddressDefaultIsExclusive(t *testing.T) {
	h := newHarness(t)
	base := "/api/users/" + h.userID.Hex() + "/addresses"
	addr := gin.H{"fullName": "Asha", "street": "1 Spice Rd", "city": "Kochi", "isDefault": true}

	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, base, h.userToken, addr).Code)
	addr["street"] = "2 Tea Ln"
	w := h.do(http.MethodPost, base, h.userToken, addr)
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[models.Address](t, w)

	w = h.do(http.MethodGet, base, h.userToken, nil)
	addresses := decode[[]models.Address](t, w)
	require.Len(t, addresses, 2)
	defaults := 0
	for _, a := range addresses {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	assert.Equal(t, http.StatusOK, h.do(http.MethodDelete, base+"/"+second.ID.Hex(), h.userToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, base+"/"+second.ID.Hex(), h.userToken, nil).Code)
}

func TestWishlistEndpoints(t *testing.T) {
	h := newHarness(t)
	p := h.seedProduct("Vanilla", 2, 8)
	body := gin.H{"userId": h.userID.Hex(), "productId": p.ID.Hex()}

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/wishlist/add", h.userToken, body).Code)

	w := h.do(http.MethodPost, "/api/wishlist/add", h.userToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodGet, "/api/wishlist?userId="+h.userID.Hex(), h.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[models.Wishlist](t, w).Items, 1)

	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/wishlist/remove", h.userToken, body).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/api/wishlist/remove", h.userToken, body).Code)

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/wishlist/add", h.userToken, body).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/wishlist/clear", h.userToken, gin.H{"userId": h.userID.Hex()}).Code)
	w = h.do(http.MethodGet, "/api/wishlist", h.userToken, nil)
	assert.Empty(t, decode[models.Wishlist](t, w).Items)
}

func TestWishlistOfAnotherUserIsForbidden(t *testing.T) {
	h := newHarness(t)
	other := primitive.NewObjectID().Hex()
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/wishlist?userId="+other, h.userToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/wishlist?userId="+other, "", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/wishlist?userId="+other, h.adminToken, nil).Code)
}

func TestCreateOrderComputesMissingTotal(t *testing.T) {
	h := newHarness(t)
	p := h.seedProduct("Pepper", 5, 10)

	body := orderBody(p, 2, models.PaymentCOD)
	delete(body, "total")
	w := h.do(http.MethodPost, "/api/orders", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[struct {
		Order models.Order `json:"order"`
	}](t, w)
	assert.Equal(t, 20.0, resp.Order.Total)
}

// stalledPublisher never reaches its broker; Publish returns only when ctx ends.
type stalledPublisher struct {
	calls chan events.OrderEvent
}

func (p *stalledPublisher) Publish(ctx context.Context, e events.OrderEvent) error {
	p.calls <- e
	<-ctx.Done()
	return ctx.Err()
}

func (p *stalledPublisher) Close() {}

func TestCreateOrderDoesNotWaitForPublisher(t *testing.T) {
	pub := &stalledPublisher{calls: make(chan events.OrderEvent, 1)}
	h := newHarnessWith(t, func(o *Options) {
		o.Events = pub
		o.PublishTimeout = 50 * time.Millisecond
	})
	p := h.seedProduct("Cardamom", 5, 10)

	done := make(chan int, 1)
	go func() {
		done <- h.do(http.MethodPost, "/api/orders", "", orderBody(p, 1, models.PaymentCOD)).Code
	}()

	select {
	case code := <-done:
		assert.Equal(t, http.StatusCreated, code)
	case <-time.After(2 * time.Second):
		t.Fatal("order creation blocked on the event publisher")
	}

	select {
	case e := <-pub.calls:
		assert.Equal(t, events.TypeOrderCreated, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event was never handed to the publisher")
	}
	// the publish timeout releases the stalled goroutine
	h.server.Drain()
	assert.Equal(t, 4, h.products.items[0].StockQuantity)
}

func TestCategoryWritesInvalidateProductCache(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	productCache := cache.New(rdb, "test:api:categories:", time.Minute)
	t.Cleanup(func() {
		_ = productCache.DeletePattern(ctx, "*")
		rdb.Close()
	})
	h := newHarnessWith(t, func(o *Options) { o.Cache = productCache })

	cached := func() bool {
		var v []string
		found, err := productCache.Get(ctx, "products:list:all", &v)
		require.NoError(t, err)
		return found
	}

	require.NoError(t, productCache.Set(ctx, "products:list:all", []string{"stale"}))
	w := h.do(http.MethodPost, "/api/categories", h.adminToken, gin.H{"name": "Tea"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.False(t, cached())
	id := decode[models.Category](t, w).ID.Hex()

	require.NoError(t, productCache.Set(ctx, "products:list:all", []string{"stale"}))
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, "/api/categories/"+id, h.adminToken, gin.H{"name": "Teas"}).Code)
	assert.False(t, cached())

	require.NoError(t, productCache.Set(ctx, "products:list:all", []string{"stale"}))
	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/api/categories/"+id, h.adminToken, nil).Code)
	assert.False(t, cached())
}

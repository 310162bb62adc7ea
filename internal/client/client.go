// Package client talks to the storefront REST API and maps its responses
// into the canonical models records.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/models"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New returns a client with no overall request timeout; a request ends when its
// context does. WithHTTPClient installs one with a deadline.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(data []byte, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fallback
}

// Auth

type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var res struct {
		Token string   `json:"token"`
		User  wireUser `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: res.Token, User: res.User.toModel()}, nil
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	var res struct {
		User wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &res); err != nil {
		return models.User{}, err
	}
	return res.User.toModel(), nil
}

// Categories

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var res []wireCategory
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &res); err != nil {
		return nil, err
	}
	out := make([]models.Category, 0, len(res))
	for _, w := range res {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name, image string) (models.Category, error) {
	var res wireCategory
	err := c.do(ctx, http.MethodPost, "/api/categories", nil, map[string]string{"name": name, "image": image}, &res)
	if err != nil {
		return models.Category{}, err
	}
	return res.toModel(), nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil, nil)
}

// Products

type ProductQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
	All      bool
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.All {
		v.Set("all", "true")
	}
	return v
}

type ProductPage struct {
	Products []models.Product
	Total    int64
	Page     int
	HasMore  bool
}

func (c *Client) Products(ctx context.Context, q ProductQuery) (ProductPage, error) {
	var res wireProductPage
	if err := c.do(ctx, http.MethodGet, "/api/products", q.values(), nil, &res); err != nil {
		return ProductPage{}, err
	}
	return res.toPage(), nil
}

func (c *Client) NewArrivals(ctx context.Context) ([]models.Product, error) {
	var res []wireProduct
	if err := c.do(ctx, http.MethodGet, "/api/products/new-arrivals", nil, nil, &res); err != nil {
		return nil, err
	}
	return mapProducts(res), nil
}

func (c *Client) Product(ctx context.Context, id string) (models.Product, error) {
	var res wireProduct
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, nil, &res); err != nil {
		return models.Product{}, err
	}
	return res.toModel(), nil
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name          string         `json:"name"`
	Price         float64        `json:"price"`
	OriginalPrice *float64       `json:"originalPrice,omitempty"`
	Description   string         `json:"description"`
	StockQuantity int            `json:"stockQuantity"`
	CategoryID    string         `json:"categoryId"`
	Images        []models.Image `json:"images,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	OutOfStock    bool           `json:"outOfStock"`
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	var res wireProduct
	if err := c.do(ctx, http.MethodPost, "/api/products", nil, in, &res); err != nil {
		return models.Product{}, err
	}
	return res.toModel(), nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (models.Product, error) {
	var res wireProduct
	if err := c.do(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), nil, in, &res); err != nil {
		return models.Product{}, err
	}
	return res.toModel(), nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil, nil)
}

// Orders

type OrderItemInput struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}

type OrderInput struct {
	CustomerName  string                  `json:"customerName"`
	CustomerPhone string                  `json:"customerPhone"`
	Shipping      *models.ShippingAddress `json:"shipping,omitempty"`
	StorePickup   bool                    `json:"storePickup"`
	Items         []OrderItemInput        `json:"items"`
	Total         float64                 `json:"total"`
	PaymentMethod models.PaymentMethod    `json:"paymentMethod"`
	PaymentProof  string                  `json:"paymentProof,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (models.Order, error) {
	var res struct {
		Order wireOrder `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, in, &res); err != nil {
		return models.Order{}, err
	}
	return res.Order.toModel(), nil
}

func (c *Client) Orders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var res []wireOrder
	if err := c.do(ctx, http.MethodGet, "/api/orders", q, nil, &res); err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(res))
	for _, w := range res {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	var res wireOrder
	err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id), nil, map[string]models.OrderStatus{"status": status}, &res)
	if err != nil {
		return models.Order{}, err
	}
	return res.toModel(), nil
}

// Wishlist

func (c *Client) Wishlist(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	var res wireWishlist
	if err := c.do(ctx, http.MethodGet, "/api/wishlist", url.Values{"userId": {userID}}, nil, &res); err != nil {
		return nil, err
	}
	return res.productIDs(), nil
}

func (c *Client) AddToWishlist(ctx context.Context, userID, productID string) error {
	return c.do(ctx, http.MethodPost, "/api/wishlist/add", nil, map[string]string{"userId": userID, "productId": productID}, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/wishlist/remove", nil, map[string]string{"userId": userID, "productId": productID}, nil)
}

func (c *Client) ClearWishlist(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/wishlist/clear", nil, map[string]string{"userId": userID}, nil)
}

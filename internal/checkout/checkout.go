// Package checkout turns the cart into an order.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"teakspice-storefront/internal/cart"
	"teakspice-storefront/internal/client"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/notice"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidStatus = errors.New("unknown order status")
	ErrInvalidMethod = errors.New("unknown payment method")
)

const MsgPlaced = "Order placed successfully"

type API interface {
	CreateOrder(ctx context.Context, in client.OrderInput) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error)
}

// StockCache is the local product cache adjusted after a placed order.
type StockCache interface {
	DecrementStock(items []models.OrderItem)
}

type Shipping struct {
	Street     string `json:"street" validate:"required,notblank"`
	City       string `json:"city" validate:"required,notblank"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CustomerInfo is what the checkout form collects. Shipping is ignored for
// store pickup.
type CustomerInfo struct {
	Name        string   `json:"name" validate:"required,notblank"`
	Phone       string   `json:"phone" validate:"required,notblank"`
	StorePickup bool     `json:"storePickup"`
	Shipping    Shipping `json:"shipping"`
}

type Service struct {
	api      API
	cart     *cart.Cart
	stock    StockCache
	notifier notice.Notifier
	logger   *slog.Logger
	validate *validator.Validate
}

func NewService(api API, c *cart.Cart, stock StockCache, notifier notice.Notifier, logger *slog.Logger) *Service {
	validate := validator.New()
	validate.RegisterValidation("notblank", validators.NotBlank)
	return &Service{
		api:      api,
		cart:     c,
		stock:    stock,
		notifier: notifier,
		logger:   logger,
		validate: validate,
	}
}

// Validate checks the form and the cart without touching the network.
func (s *Service) Validate(info CustomerInfo) error {
	if err := s.validate.Struct(info); err != nil {
		if !info.StorePickup || !onlyShipping(err) {
			return err
		}
	}
	if s.cart.Empty() {
		return ErrEmptyCart
	}
	return nil
}

// onlyShipping reports whether every validation failure is inside Shipping.
func onlyShipping(err error) bool {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return false
	}
	for _, e := range vErrs {
		if !strings.HasPrefix(e.Namespace(), "CustomerInfo.Shipping.") {
			return false
		}
	}
	return true
}

// PlaceOrder submits the cart snapshot and the cart total. On success the
// cached stock is decremented and the cart cleared; on any failure both are
// left as they were. Retries are not deduplicated.
func (s *Service) PlaceOrder(ctx context.Context, info CustomerInfo, method models.PaymentMethod) (models.Order, error) {
	if method == "" {
		method = models.PaymentCOD
	}
	if !method.Valid() {
		s.warn("Please choose a payment method.")
		return models.Order{}, ErrInvalidMethod
	}
	if err := s.Validate(info); err != nil {
		s.warn(validationMessage(err))
		return models.Order{}, err
	}

	items := s.cart.OrderItems()
	total, _ := s.cart.Total().Float64()
	in := client.OrderInput{
		CustomerName:  strings.TrimSpace(info.Name),
		CustomerPhone: strings.TrimSpace(info.Phone),
		StorePickup:   info.StorePickup,
		Total:         total,
		PaymentMethod: method,
	}
	if !info.StorePickup {
		in.Shipping = &models.ShippingAddress{
			Street:     info.Shipping.Street,
			City:       info.Shipping.City,
			State:      info.Shipping.State,
			PostalCode: info.Shipping.PostalCode,
			Country:    info.Shipping.Country,
		}
	}
	for _, it := range items {
		in.Items = append(in.Items, client.OrderItemInput{
			ProductID: it.ProductID.Hex(),
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Image:     it.Image,
		})
	}

	order, err := s.api.CreateOrder(ctx, in)
	if err != nil {
		s.logger.Warn("place order", slog.String("error", err.Error()))
		s.warn("Failed to place order. Please try again.")
		return models.Order{}, err
	}

	s.stock.DecrementStock(items)
	s.cart.Clear()
	s.logger.Info("order placed", slog.String("orderId", order.ID.Hex()), slog.String("reference", order.Reference))
	s.notifier.Notify(notice.Notice{Kind: notice.Success, Message: MsgPlaced})
	return order, nil
}

// UpdateStatus sets any known status; transitions are not checked.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		s.warn("Unknown order status.")
		return models.Order{}, ErrInvalidStatus
	}
	order, err := s.api.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		s.logger.Warn("update order status", slog.String("orderId", orderID), slog.String("error", err.Error()))
		s.warn("Failed to update order status.")
		return models.Order{}, err
	}
	s.notifier.Notify(notice.Notice{Kind: notice.Success, Message: "Order marked " + string(status) + "."})
	return order, nil
}

func (s *Service) warn(msg string) {
	s.notifier.Notify(notice.Notice{Kind: notice.Error, Message: msg})
}

func validationMessage(err error) string {
	if errors.Is(err, ErrEmptyCart) {
		return "Your cart is empty."
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(vErrs))
	for _, e := range vErrs {
		fields = append(fields, strings.ToLower(e.Field()))
	}
	return "Please fill in: " + strings.Join(fields, ", ") + "."
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/events"
	"teakspice-storefront/internal/logging"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/store"
)

type orderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"min=1"`
	Price     float64 `json:"price" binding:"gte=0"`
	Image     string  `json:"image"`
}

type orderRequest struct {
	CustomerName  string                  `json:"customerName" binding:"required"`
	CustomerPhone string                  `json:"customerPhone" binding:"required"`
	Shipping      *models.ShippingAddress `json:"shipping"`
	StorePickup   bool                    `json:"storePickup"`
	Items         []orderItemRequest      `json:"items" binding:"required,min=1,dive"`
	Total         float64                 `json:"total" binding:"gte=0"`
	PaymentMethod models.PaymentMethod    `json:"paymentMethod"`
	PaymentProof  string                  `json:"paymentProof"`
	PaymentID     string                  `json:"paymentId"`
}

func (r orderRequest) toOrder() (models.Order, string) {
	if !r.StorePickup && (r.Shipping == nil || strings.TrimSpace(r.Shipping.Street) == "" || strings.TrimSpace(r.Shipping.City) == "") {
		return models.Order{}, "shipping address is required unless picking up in store"
	}
	if r.PaymentMethod == "" {
		r.PaymentMethod = models.PaymentCOD
	}
	if !r.PaymentMethod.Valid() {
		return models.Order{}, "unknown payment method"
	}

	items := make([]models.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		id, err := store.ParseID(it.ProductID)
		if err != nil {
			return models.Order{}, "invalid productId " + it.ProductID
		}
		items = append(items, models.OrderItem{
			ProductID: id,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Image:     it.Image,
		})
	}

	o := models.Order{
		CustomerName:  strings.TrimSpace(r.CustomerName),
		CustomerPhone: strings.TrimSpace(r.CustomerPhone),
		StorePickup:   r.StorePickup,
		Items:         items,
		Total:         r.Total,
		PaymentMethod: r.PaymentMethod,
		PaymentProof:  r.PaymentProof,
		PaymentID:     r.PaymentID,
	}
	if o.Total == 0 {
		o.Total = models.ItemsTotal(items)
	}
	if !r.StorePickup {
		o.Shipping = r.Shipping
	}
	return o, ""
}

func (s *Server) listOrders(c *gin.Context) {
	var f store.OrderFilter
	if status := models.OrderStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			badRequest(c, "unknown status")
			return
		}
		f.Status = status
	}

	ownerHex := auth.UserID(c)
	if auth.IsAdmin(c) {
		ownerHex = c.Query("userId")
	}
	if ownerHex != "" {
		owner, err := store.ParseID(ownerHex)
		if err != nil {
			badRequest(c, "invalid userId")
			return
		}
		f.UserID = &owner
	}

	orders, err := s.stores.Orders.List(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := s.stores.Orders.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "get order")
		return
	}
	if !auth.IsAdmin(c) && (order.UserID == nil || order.UserID.Hex() != auth.UserID(c)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// createOrder persists the order, then decrements stock item by item. The
// decrement is best effort: a failure is logged and the order stands.
func (s *Server) createOrder(c *gin.Context) {
	var req orderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, msg := req.toOrder()
	if msg != "" {
		badRequest(c, msg)
		return
	}
	if uid := auth.UserID(c); uid != "" {
		if owner, err := primitive.ObjectIDFromHex(uid); err == nil {
			order.UserID = &owner
		}
	}

	ctx := c.Request.Context()
	created, err := s.stores.Orders.Create(ctx, order)
	if err != nil {
		s.fail(c, err, "create order")
		return
	}

	log := logging.FromContext(ctx, s.logger)
	if err := s.stores.Products.DecrementStock(ctx, created.Items); err != nil {
		log.Warn("stock decrement incomplete", slog.String("orderId", created.ID.Hex()), slog.String("error", err.Error()))
	}
	s.invalidateProducts(ctx)
	s.publish(ctx, events.TypeOrderCreated, created)

	log.Info("order placed",
		slog.String("orderId", created.ID.Hex()),
		slog.String("reference", created.Reference),
		slog.Float64("total", created.Total))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"order":   created,
	})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if !req.Status.Valid() {
		badRequest(c, "unknown status")
		return
	}

	order, err := s.stores.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		s.fail(c, err, "update order")
		return
	}
	s.publish(c.Request.Context(), events.TypeOrderStatusChanged, order)
	c.JSON(http.StatusOK, order)
}

func (s *Server) deleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.stores.Orders.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err, "delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted."})
}

// publish sends the event in the background, bounded by publishTimeout.
// Failures are logged and never reach the caller.
func (s *Server) publish(ctx context.Context, eventType string, o models.Order) {
	log := logging.FromContext(ctx, s.logger)
	e := events.NewOrderEvent(eventType, o)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.events.Publish(ctx, e); err != nil {
			log.Warn("publish order event",
				slog.String("type", eventType), slog.String("orderId", o.ID.Hex()), slog.String("error", err.Error()))
		}
	}()
}

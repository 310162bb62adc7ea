// Package models holds the records shared by the API server and the client state layer.
package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TagNew  = "new"
	TagSale = "sale"
)

type Image struct {
	URL    string `bson:"url" json:"url"`
	Order  int    `bson:"order" json:"order"`
	IsMain bool   `bson:"isMain" json:"isMain"`
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Price          float64            `bson:"price" json:"price"`
	OriginalPrice  *float64           `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Description    string             `bson:"description" json:"description"`
	StockQuantity  int                `bson:"stockQuantity" json:"stockQuantity"`
	CategoryID     primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Images         []Image            `bson:"images" json:"images"`
	Tags           []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	ViewCount      int                `bson:"viewCount" json:"viewCount"`
	AddToCartCount int                `bson:"addToCartCount" json:"addToCartCount"`
	SoldLast24h    int                `bson:"soldLast24h" json:"soldLast24h"`
	OutOfStock     bool               `bson:"outOfStock" json:"outOfStock"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Purchasable reports whether the product may be put in a cart at all.
func (p Product) Purchasable() bool {
	return !p.OutOfStock && p.StockQuantity > 0
}

func (p Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MainImage returns the image flagged as main, falling back to the first by display order.
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	for _, img := range p.Images {
		if img.IsMain {
			return img.URL
		}
	}
	imgs := make([]Image, len(p.Images))
	copy(imgs, p.Images)
	sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Order < imgs[j].Order })
	return imgs[0].URL
}

type Category struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`
}

type OrderStatus string

const (
	StatusNew       OrderStatus = "New"
	StatusAccepted  OrderStatus = "Accepted"
	StatusShipped   OrderStatus = "Shipped"
	StatusCancelled OrderStatus = "Cancelled"
	StatusCompleted OrderStatus = "Completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusAccepted, StatusShipped, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentOnline       PaymentMethod = "Online Payment"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentOnline:
		return true
	}
	return false
}

type ShippingAddress struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// OrderItem is a frozen copy of the product at order time.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

type Order struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Reference     string              `bson:"reference" json:"reference"`
	UserID        *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	CustomerName  string              `bson:"customerName" json:"customerName"`
	CustomerPhone string              `bson:"customerPhone" json:"customerPhone"`
	Shipping      *ShippingAddress    `bson:"shipping,omitempty" json:"shipping,omitempty"`
	StorePickup   bool                `bson:"storePickup" json:"storePickup"`
	Items         []OrderItem         `bson:"items" json:"items"`
	Total         float64             `bson:"total" json:"total"`
	Status        OrderStatus         `bson:"status" json:"status"`
	PaymentMethod PaymentMethod       `bson:"paymentMethod" json:"paymentMethod"`
	PaymentProof  string              `bson:"paymentProof,omitempty" json:"paymentProof,omitempty"`
	PaymentID     string              `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Address struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type       string             `bson:"type" json:"type"`
	FullName   string             `bson:"fullName" json:"fullName"`
	Phone      string             `bson:"phone" json:"phone"`
	Street     string             `bson:"street" json:"street"`
	City       string             `bson:"city" json:"city"`
	State      string             `bson:"state" json:"state"`
	PostalCode string             `bson:"postalCode" json:"postalCode"`
	Country    string             `bson:"country" json:"country"`
	IsDefault  bool               `bson:"isDefault" json:"isDefault"`
}

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone" json:"phone"`
	Password      string             `bson:"password" json:"-"`
	Role          string             `bson:"role" json:"role"`
	Banned        bool               `bson:"banned" json:"banned"`
	EmailVerified bool               `bson:"emailVerified" json:"emailVerified"`
	VerifyToken   string             `bson:"verifyToken,omitempty" json:"-"`
	Addresses     []Address          `bson:"addresses" json:"addresses"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

type WishlistItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	AddedAt   time.Time          `bson:"addedAt" json:"addedAt"`
}

type Wishlist struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Items  []WishlistItem     `bson:"items" json:"items"`
}

func (w Wishlist) ProductIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(w.Items))
	for _, it := range w.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// ItemsTotal sums price*quantity over the items, rounded to cents.
func ItemsTotal(items []OrderItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	f, _ := sum.Round(2).Float64()
	return f
}

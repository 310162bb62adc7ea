package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/models"
)

// The API has been served by more than one backend over time, so records
// arrive with either "_id" or "id", references either as a bare id or an
// embedded document, and numbers sometimes quoted. The wire types below
// accept every shape; toModel maps each into the canonical record.

// flexID accepts "hex", {"$oid":"hex"}, {"_id":"hex"} or {"id":"hex"}.
type flexID struct {
	Hex  string
	Name string
}

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &f.Hex)
	}
	var obj struct {
		OID  string  `json:"$oid"`
		ID   *flexID `json:"_id"`
		Alt  *flexID `json:"id"`
		Name string  `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.OID != "":
		f.Hex = obj.OID
	case obj.ID != nil:
		f.Hex = obj.ID.Hex
	case obj.Alt != nil:
		f.Hex = obj.Alt.Hex
	}
	f.Name = obj.Name
	return nil
}

func (f flexID) objectID() primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(f.Hex)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

func pickID(ids ...flexID) primitive.ObjectID {
	for _, id := range ids {
		if oid := id.objectID(); !oid.IsZero() {
			return oid
		}
	}
	return primitive.NilObjectID
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = flexInt(f)
	return nil
}

// flexImage accepts a URL string or an image object.
type flexImage models.Image

func (img *flexImage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &img.URL)
	}
	var obj struct {
		URL    string  `json:"url"`
		Order  flexInt `json:"order"`
		IsMain bool    `json:"isMain"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*img = flexImage{URL: obj.URL, Order: int(obj.Order), IsMain: obj.IsMain}
	return nil
}

type wireCategory struct {
	MongoID flexID `json:"_id"`
	ID      flexID `json:"id"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

func (w wireCategory) toModel() models.Category {
	return models.Category{ID: pickID(w.ID, w.MongoID), Name: w.Name, Image: w.Image}
}

type wireProduct struct {
	MongoID        flexID      `json:"_id"`
	ID             flexID      `json:"id"`
	Name           string      `json:"name"`
	Price          flexFloat   `json:"price"`
	OriginalPrice  *flexFloat  `json:"originalPrice"`
	Description    string      `json:"description"`
	StockQuantity  flexInt     `json:"stockQuantity"`
	CategoryID     flexID      `json:"categoryId"`
	Category       flexID      `json:"category"`
	Images         []flexImage `json:"images"`
	Image          string      `json:"image"`
	Tags           []string    `json:"tags"`
	ViewCount      flexInt     `json:"viewCount"`
	AddToCartCount flexInt     `json:"addToCartCount"`
	SoldLast24h    flexInt     `json:"soldLast24h"`
	OutOfStock     bool        `json:"outOfStock"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func (w wireProduct) toModel() models.Product {
	p := models.Product{
		ID:             pickID(w.ID, w.MongoID),
		Name:           w.Name,
		Price:          float64(w.Price),
		Description:    w.Description,
		StockQuantity:  int(w.StockQuantity),
		CategoryID:     pickID(w.CategoryID, w.Category),
		Tags:           w.Tags,
		ViewCount:      int(w.ViewCount),
		AddToCartCount: int(w.AddToCartCount),
		SoldLast24h:    int(w.SoldLast24h),
		OutOfStock:     w.OutOfStock,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
	if w.OriginalPrice != nil {
		op := float64(*w.OriginalPrice)
		p.OriginalPrice = &op
	}
	for i, img := range w.Images {
		m := models.Image(img)
		if m.Order == 0 {
			m.Order = i
		}
		p.Images = append(p.Images, m)
	}
	if len(p.Images) == 0 && w.Image != "" {
		p.Images = []models.Image{{URL: w.Image, IsMain: true}}
	}
	return p
}

func mapProducts(ws []wireProduct) []models.Product {
	out := make([]models.Product, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel())
	}
	return out
}

type wireProductPage struct {
	Products      []wireProduct `json:"products"`
	Total         flexInt       `json:"total"`
	TotalProducts flexInt       `json:"totalProducts"`
	Page          flexInt       `json:"page"`
	CurrentPage   flexInt       `json:"currentPage"`
	HasMore       bool          `json:"hasMore"`
}

func (w wireProductPage) toPage() ProductPage {
	page := ProductPage{
		Products: mapProducts(w.Products),
		Total:    int64(w.Total),
		Page:     int(w.Page),
		HasMore:  w.HasMore,
	}
	if page.Total == 0 {
		page.Total = int64(w.TotalProducts)
	}
	if page.Page == 0 {
		page.Page = int(w.CurrentPage)
	}
	return page
}

type wireOrderItem struct {
	ProductID flexID    `json:"productId"`
	Product   flexID    `json:"product"`
	Name      string    `json:"name"`
	Quantity  flexInt   `json:"quantity"`
	Price     flexFloat `json:"price"`
	Image     string    `json:"image"`
}

type wireOrder struct {
	MongoID       flexID                  `json:"_id"`
	ID            flexID                  `json:"id"`
	Reference     string                  `json:"reference"`
	UserID        flexID                  `json:"userId"`
	CustomerName  string                  `json:"customerName"`
	CustomerPhone string                  `json:"customerPhone"`
	Shipping      *models.ShippingAddress `json:"shipping"`
	StorePickup   bool                    `json:"storePickup"`
	Items         []wireOrderItem         `json:"items"`
	Total         flexFloat               `json:"total"`
	Status        models.OrderStatus      `json:"status"`
	PaymentMethod models.PaymentMethod    `json:"paymentMethod"`
	PaymentProof  string                  `json:"paymentProof"`
	PaymentID     string                  `json:"paymentId"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

func (w wireOrder) toModel() models.Order {
	o := models.Order{
		ID:            pickID(w.ID, w.MongoID),
		Reference:     w.Reference,
		CustomerName:  w.CustomerName,
		CustomerPhone: w.CustomerPhone,
		Shipping:      w.Shipping,
		StorePickup:   w.StorePickup,
		Total:         float64(w.Total),
		Status:        w.Status,
		PaymentMethod: w.PaymentMethod,
		PaymentProof:  w.PaymentProof,
		PaymentID:     w.PaymentID,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
	if uid := w.UserID.objectID(); !uid.IsZero() {
		o.UserID = &uid
	}
	for _, it := range w.Items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: pickID(it.ProductID, it.Product),
			Name:      it.Name,
			Quantity:  int(it.Quantity),
			Price:     float64(it.Price),
			Image:     it.Image,
		})
	}
	return o
}

type wireUser struct {
	MongoID       flexID           `json:"_id"`
	ID            flexID           `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone"`
	Role          string           `json:"role"`
	Banned        bool             `json:"banned"`
	EmailVerified bool             `json:"emailVerified"`
	Addresses     []models.Address `json:"addresses"`
}

func (w wireUser) toModel() models.User {
	role := w.Role
	if role == "" {
		role = models.RoleUser
	}
	return models.User{
		ID:            pickID(w.ID, w.MongoID),
		Name:          w.Name,
		Email:         w.Email,
		Phone:         w.Phone,
		Role:          role,
		Banned:        w.Banned,
		EmailVerified: w.EmailVerified,
		Addresses:     w.Addresses,
	}
}

// wireWishlist accepts {items:[{productId}]} as well as a bare
// {products:[...]} list of ids or product documents.
type wireWishlist struct {
	Items []struct {
		ProductID flexID `json:"productId"`
	} `json:"items"`
	Products []flexID `json:"products"`
}

func (w wireWishlist) productIDs() []primitive.ObjectID {
	ids := []primitive.ObjectID{}
	for _, it := range w.Items {
		if id := it.ProductID.objectID(); !id.IsZero() {
			ids = append(ids, id)
		}
	}
	for _, p := range w.Products {
		if id := p.objectID(); !id.IsZero() {
			ids = append(ids, id)
		}
	}
	return ids
}

package api

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/events"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/store"
)

type memCategories struct {
	items []models.Category
}

func (m *memCategories) List(context.Context) ([]models.Category, error) {
	return append([]models.Category{}, m.items...), nil
}

func (m *memCategories) Create(_ context.Context, c models.Category) (models.Category, error) {
	for _, existing := range m.items {
		if strings.EqualFold(existing.Name, strings.TrimSpace(c.Name)) {
			return c, database.ErrCategoryExists
		}
	}
	c.ID = primitive.NewObjectID()
	m.items = append(m.items, c)
	return c, nil
}

func (m *memCategories) Update(_ context.Context, c models.Category) (models.Category, error) {
	for i := range m.items {
		if m.items[i].ID == c.ID {
			m.items[i] = c
			return c, nil
		}
	}
	return c, database.ErrNotFound
}

func (m *memCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type memProducts struct {
	items []models.Product
}

func (m *memProducts) find(id primitive.ObjectID) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memProducts) List(_ context.Context, q store.ProductQuery) (store.ProductPage, error) {
	q = q.Normalize()
	var matched []models.Product
	for _, p := range m.items {
		if q.CategoryID != "" && p.CategoryID.Hex() != q.CategoryID {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, p)
	}
	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	page := append([]models.Product{}, matched[start:end]...)
	return store.ProductPage{
		Products: page,
		Total:    int64(len(matched)),
		Page:     q.Page,
		Limit:    q.Limit,
		HasMore:  end < len(matched),
	}, nil
}

func (m *memProducts) NewArrivals(_ context.Context, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.items {
		if p.HasTag(models.TagNew) && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) Get(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	if i := m.find(id); i >= 0 {
		return m.items[i], nil
	}
	return models.Product{}, database.ErrNotFound
}

func (m *memProducts) Create(_ context.Context, p models.Product) (models.Product, error) {
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	m.items = append(m.items, p)
	return p, nil
}

func (m *memProducts) Update(_ context.Context, p models.Product) (models.Product, error) {
	i := m.find(p.ID)
	if i < 0 {
		return p, database.ErrNotFound
	}
	m.items[i] = p
	return p, nil
}

func (m *memProducts) Delete(_ context.Context, id primitive.ObjectID) error {
	i := m.find(id)
	if i < 0 {
		return database.ErrNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *memProducts) DecrementStock(_ context.Context, items []models.OrderItem) error {
	for _, it := range items {
		if i := m.find(it.ProductID); i >= 0 {
			m.items[i].StockQuantity -= it.Quantity
			m.items[i].SoldLast24h += it.Quantity
		}
	}
	return nil
}

func (m *memProducts) IncrementCounter(_ context.Context, id primitive.ObjectID, counter string) error {
	i := m.find(id)
	if i < 0 {
		return database.ErrNotFound
	}
	switch counter {
	case store.CounterViews:
		m.items[i].ViewCount++
	case store.CounterAddToCart:
		m.items[i].AddToCartCount++
	}
	return nil
}

type memOrders struct {
	items []models.Order
	fail  error
}

func (m *memOrders) List(_ context.Context, f store.OrderFilter) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range m.items {
		if f.UserID != nil && (o.UserID == nil || *o.UserID != *f.UserID) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrders) Get(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	for _, o := range m.items {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, database.ErrNotFound
}

func (m *memOrders) Create(_ context.Context, o models.Order) (models.Order, error) {
	if m.fail != nil {
		return o, m.fail
	}
	o.ID = primitive.NewObjectID()
	o.Reference = "ORD-TEST"
	o.Status = models.StatusNew
	if o.Total <= 0 {
		o.Total = models.ItemsTotal(o.Items)
	}
	m.items = append(m.items, o)
	return o, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			return m.items[i], nil
		}
	}
	return models.Order{}, database.ErrNotFound
}

func (m *memOrders) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type memUsers struct {
	items map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{items: map[primitive.ObjectID]models.User{}}
}

func (m *memUsers) List(context.Context) ([]models.User, error) {
	out := []models.User{}
	for _, u := range m.items {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) Get(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := m.items[id]
	if !ok {
		return u, database.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range m.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	for _, existing := range m.items {
		if strings.EqualFold(existing.Email, u.Email) {
			return u, database.ErrEmailTaken
		}
	}
	u.ID = primitive.NewObjectID()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	m.items[u.ID] = u
	return u, nil
}

func (m *memUsers) VerifyEmail(_ context.Context, token string) (models.User, error) {
	for id, u := range m.items {
		if token != "" && u.VerifyToken == token {
			u.EmailVerified = true
			u.VerifyToken = ""
			m.items[id] = u
			return u, nil
		}
	}
	return models.User{}, database.ErrInvalidToken
}

func (m *memUsers) Update(_ context.Context, id primitive.ObjectID, patch store.UserPatch) (models.User, error) {
	u, ok := m.items[id]
	if !ok {
		return u, database.ErrNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Banned != nil {
		u.Banned = *patch.Banned
	}
	m.items[id] = u
	return u, nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.items[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memUsers) Addresses(_ context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	u, ok := m.items[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return append([]models.Address{}, u.Addresses...), nil
}

func (m *memUsers) AddAddress(_ context.Context, userID primitive.ObjectID, a models.Address) (models.Address, error) {
	u, ok := m.items[userID]
	if !ok {
		return a, database.ErrNotFound
	}
	if a.IsDefault {
		for i := range u.Addresses {
			u.Addresses[i].IsDefault = false
		}
	}
	a.ID = primitive.NewObjectID()
	u.Addresses = append(u.Addresses, a)
	m.items[userID] = u
	return a, nil
}

func (m *memUsers) UpdateAddress(_ context.Context, userID primitive.ObjectID, a models.Address) (models.Address, error) {
	u, ok := m.items[userID]
	if !ok {
		return a, database.ErrNotFound
	}
	for i := range u.Addresses {
		if u.Addresses[i].ID == a.ID {
			if a.IsDefault {
				for j := range u.Addresses {
					u.Addresses[j].IsDefault = false
				}
			}
			u.Addresses[i] = a
			m.items[userID] = u
			return a, nil
		}
	}
	return a, database.ErrNotFound
}

func (m *memUsers) DeleteAddress(_ context.Context, userID, addressID primitive.ObjectID) error {
	u, ok := m.items[userID]
	if !ok {
		return database.ErrNotFound
	}
	for i := range u.Addresses {
		if u.Addresses[i].ID == addressID {
			u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
			m.items[userID] = u
			return nil
		}
	}
	return database.ErrNotFound
}

type memWishlists struct {
	items map[primitive.ObjectID][]models.WishlistItem
}

func newMemWishlists() *memWishlists {
	return &memWishlists{items: map[primitive.ObjectID][]models.WishlistItem{}}
}

func (m *memWishlists) Get(_ context.Context, userID primitive.ObjectID) (models.Wishlist, error) {
	items := append([]models.WishlistItem{}, m.items[userID]...)
	return models.Wishlist{UserID: userID, Items: items}, nil
}

func (m *memWishlists) Add(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error) {
	for _, it := range m.items[userID] {
		if it.ProductID == productID {
			return models.Wishlist{}, database.ErrAlreadyInWishlist
		}
	}
	m.items[userID] = append(m.items[userID], models.WishlistItem{ProductID: productID, AddedAt: time.Now()})
	return m.Get(ctx, userID)
}

func (m *memWishlists) Remove(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error) {
	items := m.items[userID]
	for i, it := range items {
		if it.ProductID == productID {
			m.items[userID] = append(items[:i], items[i+1:]...)
			return m.Get(ctx, userID)
		}
	}
	return models.Wishlist{}, database.ErrNotInWishlist
}

func (m *memWishlists) Clear(_ context.Context, userID primitive.ObjectID) error {
	m.items[userID] = nil
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() {}

package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/models"
)

// Engagement counters that may be bumped through IncrementCounter.
const (
	CounterViews     = "viewCount"
	CounterAddToCart = "addToCartCount"
)

type Products struct {
	coll *mongo.Collection
}

func NewProducts(db *mongo.Database) *Products {
	return &Products{coll: db.Collection(database.CollProducts)}
}

func productFilter(q ProductQuery) (bson.M, error) {
	filter := bson.M{}
	if q.CategoryID != "" {
		id, err := ParseID(q.CategoryID)
		if err != nil {
			return nil, err
		}
		filter["categoryId"] = id
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
		}
	}
	return filter, nil
}

func (s *Products) List(ctx context.Context, q ProductQuery) (ProductPage, error) {
	q = q.Normalize()
	filter, err := productFilter(q)
	if err != nil {
		return ProductPage{}, err
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return ProductPage{}, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return ProductPage{}, fmt.Errorf("find products: %w", err)
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return ProductPage{}, fmt.Errorf("decode products: %w", err)
	}
	return newProductPage(products, total, q), nil
}

// NewArrivals lists products tagged "new" first, then the most recently created.
func (s *Products) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 || limit > MaxPageSize {
		limit = 10
	}

	products := []models.Product{}
	seen := map[primitive.ObjectID]bool{}

	for _, filter := range []bson.M{{"tags": models.TagNew}, {}} {
		if len(products) >= limit {
			break
		}
		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(int64(limit))
		cur, err := s.coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, fmt.Errorf("find new arrivals: %w", err)
		}
		var batch []models.Product
		if err := cur.All(ctx, &batch); err != nil {
			return nil, fmt.Errorf("decode new arrivals: %w", err)
		}
		for _, p := range batch {
			if len(products) >= limit {
				break
			}
			if !seen[p.ID] {
				seen[p.ID] = true
				products = append(products, p)
			}
		}
	}
	return products, nil
}

func (s *Products) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	return p, database.NotFound(err)
}

func (s *Products) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []models.Image{}
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return p, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// Update replaces the editable fields. Engagement counters are left alone.
func (s *Products) Update(ctx context.Context, p models.Product) (models.Product, error) {
	if p.Images == nil {
		p.Images = []models.Image{}
	}
	set := bson.M{
		"name":          p.Name,
		"price":         p.Price,
		"originalPrice": p.OriginalPrice,
		"description":   p.Description,
		"stockQuantity": p.StockQuantity,
		"categoryId":    p.CategoryID,
		"images":        p.Images,
		"tags":          p.Tags,
		"outOfStock":    p.OutOfStock,
		"updatedAt":     time.Now().UTC(),
	}

	var updated models.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		return p, database.NotFound(err)
	}
	return updated, nil
}

func (s *Products) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// DecrementStock subtracts each ordered quantity from stock and adds it to the
// 24h sold counter. Updates are independent: there is no floor and no
// transaction, so concurrent orders can drive stock negative.
func (s *Products) DecrementStock(ctx context.Context, items []models.OrderItem) error {
	var failed []string
	for _, it := range items {
		_, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": it.ProductID},
			bson.M{"$inc": bson.M{"stockQuantity": -it.Quantity, "soldLast24h": it.Quantity}},
		)
		if err != nil {
			failed = append(failed, it.ProductID.Hex())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("decrement stock for %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *Products) IncrementCounter(ctx context.Context, id primitive.ObjectID, counter string) error {
	if counter != CounterViews && counter != CounterAddToCart {
		return fmt.Errorf("unknown counter %q", counter)
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{counter: 1}})
	if err != nil {
		return fmt.Errorf("increment %s: %w", counter, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SetSoldLast24h resets every product's counter and applies counts.
func (s *Products) SetSoldLast24h(ctx context.Context, counts map[primitive.ObjectID]int) error {
	if _, err := s.coll.UpdateMany(ctx, bson.M{"soldLast24h": bson.M{"$ne": 0}}, bson.M{"$set": bson.M{"soldLast24h": 0}}); err != nil {
		return fmt.Errorf("reset sold counters: %w", err)
	}
	if len(counts) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(counts))
	for id, n := range counts {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"soldLast24h": n}}))
	}
	if _, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("set sold counters: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/models"
)

const referenceAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

type OrderFilter struct {
	UserID *primitive.ObjectID
	Status models.OrderStatus
}

type Orders struct {
	coll      *mongo.Collection
	reference func() string
}

func NewOrders(db *mongo.Database) (*Orders, error) {
	gen, err := nanoid.CustomASCII(referenceAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("order reference generator: %w", err)
	}
	return &Orders{coll: db.Collection(database.CollOrders), reference: gen}, nil
}

func (s *Orders) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *Orders) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	return o, database.NotFound(err)
}

// Create persists the order with status New whatever the payment method.
// A zero total is filled in from the line items.
func (s *Orders) Create(ctx context.Context, o models.Order) (models.Order, error) {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.Reference = "ORD-" + s.reference()
	o.Status = models.StatusNew
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Total <= 0 {
		o.Total = models.ItemsTotal(o.Items)
	}

	if _, err := s.coll.InsertOne(ctx, o); err != nil {
		return o, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

// UpdateStatus stores any valid status; transitions are not checked.
func (s *Orders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (models.Order, error) {
	var o models.Order
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	return o, database.NotFound(err)
}

func (s *Orders) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// SoldSince totals ordered quantities per product over non-cancelled orders
// created at or after since.
func (s *Orders) SoldSince(ctx context.Context, since time.Time) (map[primitive.ObjectID]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt": bson.M{"$gte": since},
			"status":    bson.M{"$ne": models.StatusCancelled},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":  "$items.productId",
			"sold": bson.M{"$sum": "$items.quantity"},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate sold: %w", err)
	}
	var rows []struct {
		ProductID primitive.ObjectID `bson:"_id"`
		Sold      int                `bson:"sold"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode sold: %w", err)
	}

	counts := make(map[primitive.ObjectID]int, len(rows))
	for _, r := range rows {
		counts[r.ProductID] = r.Sold
	}
	return counts, nil
}

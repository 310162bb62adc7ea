package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/models"
)

type Wishlists struct {
	coll *mongo.Collection
}

func NewWishlists(db *mongo.Database) *Wishlists {
	return &Wishlists{coll: db.Collection(database.CollWishlists)}
}

// Get returns the user's wishlist, or an empty one when none was stored yet.
func (s *Wishlists) Get(ctx context.Context, userID primitive.ObjectID) (models.Wishlist, error) {
	var w models.Wishlist
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Wishlist{UserID: userID, Items: []models.WishlistItem{}}, nil
	}
	if err != nil {
		return w, fmt.Errorf("find wishlist: %w", err)
	}
	if w.Items == nil {
		w.Items = []models.WishlistItem{}
	}
	return w, nil
}

// Add appends productID. A product already present yields ErrAlreadyInWishlist.
func (s *Wishlists) Add(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": bson.M{"$ne": productID}},
		bson.M{"$push": bson.M{"items": models.WishlistItem{ProductID: productID, AddedAt: time.Now().UTC()}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// The upsert collides with the unique userId index when the
		// product is already present.
		if database.IsDuplicateKey(err) {
			return models.Wishlist{}, database.ErrAlreadyInWishlist
		}
		return models.Wishlist{}, fmt.Errorf("add to wishlist: %w", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return models.Wishlist{}, database.ErrAlreadyInWishlist
	}
	return s.Get(ctx, userID)
}

func (s *Wishlists) Remove(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		bson.M{"$pull": bson.M{"items": bson.M{"productId": productID}}},
	)
	if err != nil {
		return models.Wishlist{}, fmt.Errorf("remove from wishlist: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Wishlist{}, database.ErrNotInWishlist
	}
	return s.Get(ctx, userID)
}

func (s *Wishlists) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": []models.WishlistItem{}}},
	)
	if err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	return nil
}

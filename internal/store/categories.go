package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/models"
)

type Categories struct {
	coll *mongo.Collection
}

func NewCategories(db *mongo.Database) *Categories {
	return &Categories{coll: db.Collection(database.CollCategories)}
}

func (s *Categories) List(ctx context.Context) ([]models.Category, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	categories := []models.Category{}
	if err := cur.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

func (s *Categories) Get(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	var c models.Category
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	return c, database.NotFound(err)
}

// FindByName matches the whole name, ignoring case.
func (s *Categories) FindByName(ctx context.Context, name string) (models.Category, error) {
	var c models.Category
	filter := bson.M{"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(name)) + "$", Options: "i"}}
	err := s.coll.FindOne(ctx, filter).Decode(&c)
	return c, database.NotFound(err)
}

func (s *Categories) Create(ctx context.Context, c models.Category) (models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if _, err := s.FindByName(ctx, c.Name); err == nil {
		return c, database.ErrCategoryExists
	} else if !errors.Is(err, database.ErrNotFound) {
		return c, err
	}

	c.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if database.IsDuplicateKey(err) {
			return c, database.ErrCategoryExists
		}
		return c, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *Categories) Update(ctx context.Context, c models.Category) (models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if existing, err := s.FindByName(ctx, c.Name); err == nil && existing.ID != c.ID {
		return c, database.ErrCategoryExists
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{"name": c.Name, "image": c.Image}})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return c, database.ErrCategoryExists
		}
		return c, fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return c, database.ErrNotFound
	}
	return c, nil
}

// Delete removes the category only; products keep their (now dangling) categoryId.
func (s *Categories) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

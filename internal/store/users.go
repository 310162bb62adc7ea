package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/models"
)

// UserPatch holds the profile fields a caller may change; nil means unchanged.
type UserPatch struct {
	Name   *string
	Email  *string
	Phone  *string
	Role   *string
	Banned *bool
}

type Users struct {
	coll *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{coll: db.Collection(database.CollUsers)}
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *Users) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, database.NotFound(err)
}

func (s *Users) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u)
	return u, database.NotFound(err)
}

// Create inserts u as given; the password must already be hashed.
func (s *Users) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.Now().UTC()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Addresses == nil {
		u.Addresses = []models.Address{}
	}
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			return u, database.ErrEmailTaken
		}
		return u, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Users) Update(ctx context.Context, id primitive.ObjectID, patch UserPatch) (models.User, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = normalizeEmail(*patch.Email)
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.Banned != nil {
		set["banned"] = *patch.Banned
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	var u models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if database.IsDuplicateKey(err) {
		return u, database.ErrEmailTaken
	}
	return u, database.NotFound(err)
}

func (s *Users) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// VerifyEmail marks the owner of token as verified and consumes the token.
func (s *Users) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, database.ErrInvalidToken
	}
	var u models.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"verifyToken": token},
		bson.M{"$set": bson.M{"emailVerified": true}, "$unset": bson.M{"verifyToken": ""}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return u, database.ErrInvalidToken
	}
	return u, err
}

func (s *Users) Addresses(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Addresses == nil {
		return []models.Address{}, nil
	}
	return u.Addresses, nil
}

// AddAddress appends a. When a is the default, every other address is
// unset first in a separate update.
func (s *Users) AddAddress(ctx context.Context, userID primitive.ObjectID, a models.Address) (models.Address, error) {
	if a.IsDefault {
		if err := s.clearDefault(ctx, userID); err != nil {
			return a, err
		}
	}
	a.ID = primitive.NewObjectID()
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"addresses": a}})
	if err != nil {
		return a, fmt.Errorf("push address: %w", err)
	}
	if res.MatchedCount == 0 {
		return a, database.ErrNotFound
	}
	return a, nil
}

func (s *Users) UpdateAddress(ctx context.Context, userID primitive.ObjectID, a models.Address) (models.Address, error) {
	if a.IsDefault {
		if err := s.clearDefault(ctx, userID); err != nil {
			return a, err
		}
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses._id": a.ID},
		bson.M{"$set": bson.M{"addresses.$": a}},
	)
	if err != nil {
		return a, fmt.Errorf("update address: %w", err)
	}
	if res.MatchedCount == 0 {
		return a, database.ErrNotFound
	}
	return a, nil
}

func (s *Users) DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses._id": addressID},
		bson.M{"$pull": bson.M{"addresses": bson.M{"_id": addressID}}},
	)
	if err != nil {
		return fmt.Errorf("pull address: %w", err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (s *Users) clearDefault(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"addresses.$[].isDefault": false}},
	)
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package database

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidID         = errors.New("invalid id")
	ErrCategoryExists    = errors.New("category already exists")
	ErrEmailTaken        = errors.New("email already registered")
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
	ErrNotInWishlist     = errors.New("product not in wishlist")
	ErrInvalidToken      = errors.New("invalid or expired verification token")
)

// NotFound maps mongo.ErrNoDocuments to ErrNotFound and passes everything else through.
func NotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

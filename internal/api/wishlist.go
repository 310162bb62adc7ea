package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/store"
)

type wishlistRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

// bindWishlist reads userId/productId from the JSON body, falling back to
// the query string, and checks the caller owns the wishlist.
func bindWishlist(c *gin.Context, needProduct bool) (userID, productID primitive.ObjectID, ok bool) {
	var req wishlistRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "invalid input")
			return userID, productID, false
		}
	}
	if req.UserID == "" {
		req.UserID = c.Query("userId")
	}
	if req.ProductID == "" {
		req.ProductID = c.Query("productId")
	}
	if req.UserID == "" {
		req.UserID = auth.UserID(c)
	}

	var err error
	if userID, err = store.ParseID(req.UserID); err != nil {
		badRequest(c, "invalid userId")
		return userID, productID, false
	}
	if !auth.CanAccess(c, userID.Hex()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return userID, productID, false
	}
	if needProduct {
		if productID, err = store.ParseID(req.ProductID); err != nil {
			badRequest(c, "invalid productId")
			return userID, productID, false
		}
	}
	return userID, productID, true
}

func (s *Server) getWishlist(c *gin.Context) {
	userID, _, ok := bindWishlist(c, false)
	if !ok {
		return
	}
	w, err := s.stores.Wishlists.Get(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err, "get wishlist")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) addToWishlist(c *gin.Context) {
	userID, productID, ok := bindWishlist(c, true)
	if !ok {
		return
	}
	w, err := s.stores.Wishlists.Add(c.Request.Context(), userID, productID)
	if err != nil {
		s.fail(c, err, "add to wishlist")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) removeFromWishlist(c *gin.Context) {
	userID, productID, ok := bindWishlist(c, true)
	if !ok {
		return
	}
	w, err := s.stores.Wishlists.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		s.fail(c, err, "remove from wishlist")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) clearWishlist(c *gin.Context) {
	userID, _, ok := bindWishlist(c, false)
	if !ok {
		return
	}
	if err := s.stores.Wishlists.Clear(c.Request.Context(), userID); err != nil {
		s.fail(c, err, "clear wishlist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wishlist cleared."})
}

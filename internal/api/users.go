package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/models"
	"teakspice-storefront/internal/store"
)

type createUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type updateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Phone  *string `json:"phone"`
	Role   *string `json:"role" binding:"omitempty,oneof=user admin"`
	Banned *bool   `json:"banned"`
}

type addressRequest struct {
	Type       string `json:"type"`
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

func (r addressRequest) toAddress() models.Address {
	if r.Type == "" {
		r.Type = "home"
	}
	return models.Address{
		Type:       r.Type,
		FullName:   r.FullName,
		Phone:      r.Phone,
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		IsDefault:  r.IsDefault,
	}
}

// ownUserID parses :id and checks the caller is that user or an admin.
func ownUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return id, false
	}
	if !auth.CanAccess(c, id.Hex()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return id, false
	}
	return id, true
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.stores.Users.List(c.Request.Context())
	if err != nil {
		s.fail(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		s.fail(c, err, "create user")
		return
	}
	user, err := s.stores.Users.Create(c.Request.Context(), models.User{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Password:      hashed,
		Role:          req.Role,
		EmailVerified: true,
	})
	if err != nil {
		s.fail(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := ownUserID(c)
	if !ok {
		return
	}
	user, err := s.stores.Users.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := ownUserID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if (req.Role != nil || req.Banned != nil) && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins may change role or banned"})
		return
	}
	user, err := s.stores.Users.Update(c.Request.Context(), id, store.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   req.Role,
		Banned: req.Banned,
	})
	if err != nil {
		s.fail(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := ownUserID(c)
	if !ok {
		return
	}
	if err := s.stores.Users.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err, "delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted."})
}

func (s *Server) listAddresses(c *gin.Context) {
	id, ok := ownUserID(c)
	if !ok {
		return
	}
	addresses, err := s.stores.Users.Addresses(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "list addresses")
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (s *Server) addAddress(c *gin.Context) {
	id, ok := ownUserID(c)
	if !ok {
		return
	}
	var req addressRequest
	if !bindJSON(c, &req) {
		return
	}
	address, err := s.stores.Users.AddAddress(c.Request.Context(), id, req.toAddress())
	if err != nil {
		s.fail(c, err, "add address")
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (s *Server) updateAddress(c *gin.Context) {
	id, ok := ownUserID(c)
	if !ok {
		return
	}
	addressID, ok := pathID(c, "addressId")
	if !ok {
		return
	}
	var req addressRequest
	if !bindJSON(c, &req) {
		return
	}
	a := req.toAddress()
	a.ID = addressID
	address, err := s.stores.Users.UpdateAddress(c.Request.Context(), id, a)
	if err != nil {
		s.fail(c, err, "update address")
		return
	}
	c.JSON(http.StatusOK, address)
}

func (s *Server) deleteAddress(c *gin.Context) {
	id, ok := ownUserID(c)
	if !ok {
		return
	}
	addressID, ok := pathID(c, "addressId")
	if !ok {
		return
	}
	if err := s.stores.Users.DeleteAddress(c.Request.Context(), id, addressID); err != nil {
		s.fail(c, err, "delete address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address deleted."})
}

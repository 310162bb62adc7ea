package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teakspice-storefront/internal/auth"
)

func (s *Server) register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err, "register")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered. Check your email to verify your account.",
		"user":    user,
	})
}

func (s *Server) verifyEmail(c *gin.Context) {
	user, err := s.auth.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		s.fail(c, err, "verify email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified.", "user": user})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err, "login")
		return
	}
	c.JSON(http.StatusOK, res)
}

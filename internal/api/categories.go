package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teakspice-storefront/internal/models"
)

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Image string `json:"image"`
}

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.stores.Categories.List(c.Request.Context())
	if err != nil {
		s.fail(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) createCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := s.stores.Categories.Create(c.Request.Context(), models.Category{Name: req.Name, Image: req.Image})
	if err != nil {
		s.fail(c, err, "create category")
		return
	}
	s.invalidateProducts(c.Request.Context())
	c.JSON(http.StatusCreated, category)
}

func (s *Server) updateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := s.stores.Categories.Update(c.Request.Context(), models.Category{ID: id, Name: req.Name, Image: req.Image})
	if err != nil {
		s.fail(c, err, "update category")
		return
	}
	s.invalidateProducts(c.Request.Context())
	c.JSON(http.StatusOK, category)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.stores.Categories.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err, "delete category")
		return
	}
	s.invalidateProducts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted."})
}

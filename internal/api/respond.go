package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/logging"
	"teakspice-storefront/internal/store"
)

const msgCategoryExists = "Category already exists."

// fail writes the error response for err. Known domain errors map to 4xx;
// everything else is logged and reported as "failed to <op>".
func (s *Server) fail(c *gin.Context, err error, op string) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.Is(err, database.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, database.ErrCategoryExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCategoryExists})
	case errors.Is(err, database.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered."})
	case errors.Is(err, database.ErrAlreadyInWishlist):
		c.JSON(http.StatusConflict, gin.H{"error": "Product already in wishlist."})
	case errors.Is(err, database.ErrNotInWishlist):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not in wishlist."})
	case errors.Is(err, database.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrBadCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &vErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(vErrs)})
	default:
		logging.FromContext(c.Request.Context(), s.logger).Error("request failed",
			slog.String("op", op), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bindJSON binds the body, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			badRequest(c, validationMessage(vErrs))
		} else {
			badRequest(c, "invalid input")
		}
		return false
	}
	return true
}

func validationMessage(vErrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(vErrs))
	for _, e := range vErrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, e.Field()+" is required")
		case "min", "gte":
			msgs = append(msgs, e.Field()+" must be at least "+e.Param())
		default:
			msgs = append(msgs, e.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// pathID parses the named URL parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := store.ParseID(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return id, false
	}
	return id, true
}

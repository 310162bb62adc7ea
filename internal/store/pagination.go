package store

import (
	"strconv"

	"teakspice-storefront/internal/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// FetchAllLimit bounds the admin "fetch all" listing.
	FetchAllLimit = 1000
)

type ProductQuery struct {
	CategoryID string
	Search     string
	Page       int
	Limit      int
	All        bool
}

// Normalize clamps page and limit into their allowed ranges.
func (q ProductQuery) Normalize() ProductQuery {
	if q.All {
		q.Page = 1
		q.Limit = FetchAllLimit
		return q
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

// CacheKey identifies a normalized query for the listing cache.
func (q ProductQuery) CacheKey() string {
	return "products:list:c=" + q.CategoryID +
		":s=" + q.Search +
		":p=" + strconv.Itoa(q.Page) +
		":l=" + strconv.Itoa(q.Limit) +
		":a=" + strconv.FormatBool(q.All)
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	HasMore  bool             `json:"hasMore"`
}

func newProductPage(products []models.Product, total int64, q ProductQuery) ProductPage {
	if products == nil {
		products = []models.Product{}
	}
	return ProductPage{
		Products: products,
		Total:    total,
		Page:     q.Page,
		Limit:    q.Limit,
		HasMore:  int64(q.Page*q.Limit) < total,
	}
}

// Package catalog exposes the product catalog over HTTP: product detail
// with its reviews, for operators and non-Telegram clients.
package catalog

import (
	"errors"
	"time"

	"scanrate_backend/internal/catalog/repository"
	"scanrate_backend/platform/apperr"
	"scanrate_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles catalog HTTP requests.
type Handler struct {
	repo *repository.Repository
}

// NewHandler creates a new catalog handler.
func NewHandler(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// ProductResponse is the product detail payload.
type ProductResponse struct {
	Barcode   string           `json:"barcode"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Reviews   []ReviewResponse `json:"reviews"`
}

// ReviewResponse is one review within a product detail payload.
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HandleGetProduct returns one product and all its reviews.
// GET /api/v1/products/:barcode
func (h *Handler) HandleGetProduct(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("barcode")

	product, err := h.repo.GetProduct(ctx, code)
	if errors.Is(err, repository.ErrProductNotFound) {
		httpkit.HandleError(c, apperr.NotFound("product not found"))
		return
	}
	if httpkit.HandleError(c, wrapStoreErr(err, "could not load product")) {
		return
	}

	reviews, err := h.repo.ListReviews(ctx, code)
	if httpkit.HandleError(c, wrapStoreErr(err, "could not load reviews")) {
		return
	}

	resp := ProductResponse{
		Barcode:   product.Barcode,
		Name:      product.Name,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
		Reviews:   make([]ReviewResponse, 0, len(reviews)),
	}
	for _, rev := range reviews {
		resp.Reviews = append(resp.Reviews, ReviewResponse{
			ID:        rev.ID,
			UserID:    rev.UserID,
			Rating:    rev.Rating,
			Text:      rev.Text,
			CreatedAt: rev.CreatedAt,
			UpdatedAt: rev.UpdatedAt,
		})
	}

	httpkit.OK(c, resp)
}

func wrapStoreErr(err error, message string) error {
	if err == nil {
		return nil
	}
	return apperr.Wrap(apperr.KindUnavailable, message, err)
}

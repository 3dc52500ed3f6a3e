package handler

// This file defines HTTP handlers for members to write and manage reviews.
// A review requires a qualifying visit at the store; the service layer
// enforces the gate and keeps the store's derived rating current.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-reservation/internal/repository"
	"github.com/iliyamo/store-reservation/internal/service"
)

// ReviewHandler wraps the review service for member endpoints.
type ReviewHandler struct {
	Reviews *service.ReviewService
}

// NewReviewHandler constructs a ReviewHandler. The service must be non-nil.
func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	if svc == nil {
		panic("nil service passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: svc}
}

type createReviewReq struct {
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
}

type updateReviewReq struct {
	Content *string  `json:"content"`
	Rating  *float64 `json:"rating"`
}

func reviewError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrReviewNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
	case errors.Is(err, repository.ErrStoreNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	case errors.Is(err, repository.ErrMemberNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	case errors.Is(err, repository.ErrDuplicateReview):
		return c.JSON(http.StatusConflict, echo.Map{"error": "review already exists for this store"})
	case errors.Is(err, service.ErrReviewNotAllowed):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "a qualifying visit is required to review this store"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func validRating(r float64) bool { return r >= 0 && r <= 5 }

// CreateReview handles POST /v1/stores/:id/reviews.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	var body createReviewReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}
	if !validRating(body.Rating) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 0 and 5"})
	}

	rv, err := h.Reviews.Create(c.Request().Context(), memberID, storeID, content, body.Rating)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// ListMyReviews handles GET /v1/my-reviews.
func (h *ReviewHandler) ListMyReviews(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reviews.ListByMember(c.Request().Context(), memberID)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// GetReview handles GET /v1/reviews/:id.
func (h *ReviewHandler) GetReview(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	rv, err := h.Reviews.GetByID(c.Request().Context(), id)
	if err != nil {
		return reviewError(c, err)
	}
	if rv.MemberID != memberID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, rv)
}

// UpdateReview handles PATCH /v1/reviews/:id.
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	var body updateReviewReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Content == nil && body.Rating == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if body.Content != nil && strings.TrimSpace(*body.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content cannot be empty"})
	}
	if body.Rating != nil && !validRating(*body.Rating) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 0 and 5"})
	}

	ctx := c.Request().Context()
	rv, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		return reviewError(c, err)
	}
	if rv.MemberID != memberID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	patch := service.ReviewPatch{Rating: body.Rating}
	if body.Content != nil {
		trimmed := strings.TrimSpace(*body.Content)
		patch.Content = &trimmed
	}
	updated, err := h.Reviews.Update(ctx, id, patch)
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteReview handles DELETE /v1/reviews/:id.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
	}
	ctx := c.Request().Context()
	rv, err := h.Reviews.GetByID(ctx, id)
	if err != nil {
		return reviewError(c, err)
	}
	if rv.MemberID != memberID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Reviews.Delete(ctx, id); err != nil {
		return reviewError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

// This file defines HTTP handlers for members to book and manage their own
// reservations. JWT authentication and the USER role are enforced by
// middleware; every operation additionally checks that the reservation
// belongs to the caller. Booking rules (lead time, capacity, the arrival
// window) live in the service layer.

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-reservation/internal/repository"
	"github.com/iliyamo/store-reservation/internal/service"
)

// MemberReservationHandler wraps the reservation service for member
// endpoints.
type MemberReservationHandler struct {
	Reservations *service.ReservationService
}

// NewMemberReservationHandler constructs a MemberReservationHandler. The
// service must be non-nil.
func NewMemberReservationHandler(svc *service.ReservationService) *MemberReservationHandler {
	if svc == nil {
		panic("nil service passed to NewMemberReservationHandler")
	}
	return &MemberReservationHandler{Reservations: svc}
}

type createReservationReq struct {
	VisitorNum      int       `json:"visitor_num"`
	ReservationDate time.Time `json:"reservation_date"`
}

type updateReservationReq struct {
	VisitorNum      *int       `json:"visitor_num"`
	ReservationDate *time.Time `json:"reservation_date"`
}

// reservationError maps service and repository errors onto HTTP responses.
// Unrecognized errors become 500s.
func reservationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrStoreNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
	case errors.Is(err, repository.ErrMemberNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
	case errors.Is(err, repository.ErrDuplicateReservation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already exists for this store and time"})
	case errors.Is(err, service.ErrCapacityOver):
		return c.JSON(http.StatusConflict, echo.Map{"error": "store capacity exceeded for that date"})
	case errors.Is(err, service.ErrReservationLateTime):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "same-day reservations need at least 10 minutes lead time"})
	case errors.Is(err, service.ErrVisitTimeOver):
		return c.JSON(http.StatusConflict, echo.Map{"error": "arrival window passed; reservation rejected"})
	case errors.Is(err, service.ErrMemberUnmatched):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "reservation belongs to another member"})
	case errors.Is(err, service.ErrDateUnmatched):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation is not for today"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// CreateReservation handles POST /v1/stores/:id/reservations.
func (h *MemberReservationHandler) CreateReservation(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	var body createReservationReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.VisitorNum <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "visitor_num must be positive"})
	}
	if body.ReservationDate.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_date is required"})
	}

	res, err := h.Reservations.Create(c.Request().Context(), memberID, storeID, body.VisitorNum, body.ReservationDate.UTC())
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ListMyReservations handles GET /v1/my-reservations.
func (h *MemberReservationHandler) ListMyReservations(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByMember(c.Request().Context(), memberID)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// GetReservation handles GET /v1/reservations/:id and returns the
// reservation when it belongs to the caller.
func (h *MemberReservationHandler) GetReservation(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		return reservationError(c, err)
	}
	if res.MemberID != memberID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, res)
}

// UpdateReservation handles PATCH /v1/reservations/:id. A successful
// amendment puts the reservation back in the WAITING state.
func (h *MemberReservationHandler) UpdateReservation(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body updateReservationReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.VisitorNum == nil && body.ReservationDate == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if body.VisitorNum != nil && *body.VisitorNum <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "visitor_num must be positive"})
	}

	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return reservationError(c, err)
	}
	if res.MemberID != memberID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	patch := service.ReservationPatch{VisitorNum: body.VisitorNum}
	if body.ReservationDate != nil {
		at := body.ReservationDate.UTC()
		patch.ReservationDate = &at
	}
	updated, err := h.Reservations.Update(ctx, id, patch)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteReservation handles DELETE /v1/reservations/:id.
func (h *MemberReservationHandler) DeleteReservation(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return reservationError(c, err)
	}
	if res.MemberID != memberID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Reservations.Delete(ctx, id); err != nil {
		return reservationError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordVisit handles POST /v1/reservations/:id/visit. Arriving later than
// ten minutes before the slot rejects the reservation; the rejection is
// persisted even though the request fails.
func (h *MemberReservationHandler) RecordVisit(c echo.Context) error {
	memberID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.RecordVisit(c.Request().Context(), id, memberID)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

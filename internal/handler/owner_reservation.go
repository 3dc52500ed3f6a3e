package handler

// This file defines HTTP handlers for owners to review incoming
// reservations. Owners can list reservations for their own stores,
// approve them or reject them. Approval publishes a confirmation event to
// the message broker; a publish failure is logged by the publisher but
// does not fail the request.

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-reservation/internal/queue"
	"github.com/iliyamo/store-reservation/internal/repository"
	"github.com/iliyamo/store-reservation/internal/service"
)

// OwnerReservationHandler groups the reservation service and the store
// repository used for ownership checks.
type OwnerReservationHandler struct {
	Reservations *service.ReservationService
	Stores       *repository.StoreRepo
}

// NewOwnerReservationHandler constructs an OwnerReservationHandler. All
// dependencies must be non-nil.
func NewOwnerReservationHandler(svc *service.ReservationService, stores *repository.StoreRepo) *OwnerReservationHandler {
	if svc == nil || stores == nil {
		panic("nil dependency passed to NewOwnerReservationHandler")
	}
	return &OwnerReservationHandler{Reservations: svc, Stores: stores}
}

// requireOwnedStore loads a store and verifies it belongs to ownerID.
func (h *OwnerReservationHandler) requireOwnedStore(c echo.Context, storeID, ownerID uint64) (name string, ok bool, resp error) {
	s, err := h.Stores.GetByID(c.Request().Context(), storeID)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return "", false, c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return "", false, c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if s.OwnerID != ownerID {
		return "", false, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return s.Name, true, nil
}

// ListStoreReservations handles GET /v1/owner/stores/:id/reservations.
// The optional date query parameter (YYYY-MM-DD) restricts the listing to
// a single day.
func (h *OwnerReservationHandler) ListStoreReservations(c echo.Context) error {
	ownerID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	if _, ok, resp := h.requireOwnedStore(c, storeID, ownerID); !ok {
		return resp
	}

	var day *time.Time
	if raw := c.QueryParam("date"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		day = &d
	}

	items, err := h.Reservations.ListByStore(c.Request().Context(), storeID, day)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// ConfirmReservation handles POST /v1/owner/reservations/:id/confirm.
func (h *OwnerReservationHandler) ConfirmReservation(c echo.Context) error {
	ownerID, err := getMemberID(c)
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
	storeName, ok, resp := h.requireOwnedStore(c, res.StoreID, ownerID)
	if !ok {
		return resp
	}

	confirmed, err := h.Reservations.Confirm(ctx, id)
	if err != nil {
		return reservationError(c, err)
	}

	// Best effort: the confirmation is already persisted.
	_ = queue.PublishReservationConfirmed(ctx, queue.ReservationConfirmedEvent{
		ReservationID:   confirmed.ID,
		MemberID:        confirmed.MemberID,
		StoreID:         confirmed.StoreID,
		StoreName:       storeName,
		VisitorNum:      confirmed.VisitorNum,
		ReservationDate: confirmed.ReservationDate.UTC().Format(time.RFC3339),
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, confirmed)
}

// RejectReservation handles POST /v1/owner/reservations/:id/reject.
func (h *OwnerReservationHandler) RejectReservation(c echo.Context) error {
	ownerID, err := getMemberID(c)
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
	if _, ok, resp := h.requireOwnedStore(c, res.StoreID, ownerID); !ok {
		return resp
	}

	rejected, err := h.Reservations.Reject(ctx, id)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, rejected)
}

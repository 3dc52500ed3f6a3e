package handler

// This file defines HTTP handlers for owners to manage their stores. The
// OWNER role is enforced by middleware; handlers verify that the store
// being modified belongs to the caller.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-reservation/internal/model"
	"github.com/iliyamo/store-reservation/internal/repository"
)

// OwnerStoreHandler bundles the store repository for owner endpoints.
type OwnerStoreHandler struct {
	Stores *repository.StoreRepo
}

// NewOwnerStoreHandler constructs an OwnerStoreHandler. The repository
// must be non-nil.
func NewOwnerStoreHandler(stores *repository.StoreRepo) *OwnerStoreHandler {
	if stores == nil {
		panic("nil repository passed to NewOwnerStoreHandler")
	}
	return &OwnerStoreHandler{Stores: stores}
}

type storeReq struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	CapacityPerson int      `json:"capacity_person"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

// CreateStore handles POST /v1/owner/stores.
func (h *OwnerStoreHandler) CreateStore(c echo.Context) error {
	ownerID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body storeReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.CapacityPerson <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity_person must be positive"})
	}

	s := &model.Store{
		OwnerID:        ownerID,
		Name:           name,
		Address:        strings.TrimSpace(body.Address),
		CapacityPerson: body.CapacityPerson,
	}
	if body.Latitude != nil {
		s.Latitude = *body.Latitude
	}
	if body.Longitude != nil {
		s.Longitude = *body.Longitude
	}
	if err := h.Stores.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrStoreExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "store name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create store"})
	}
	return c.JSON(http.StatusCreated, s)
}

// ListMyStores handles GET /v1/owner/stores and returns the caller's stores.
func (h *OwnerStoreHandler) ListMyStores(c echo.Context) error {
	ownerID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Stores.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// UpdateStore handles PUT/PATCH /v1/owner/stores/:id.
func (h *OwnerStoreHandler) UpdateStore(c echo.Context) error {
	ownerID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	var body storeReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if body.CapacityPerson <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity_person must be positive"})
	}

	updated, err := h.Stores.Update(c.Request().Context(), id, ownerID, name, strings.TrimSpace(body.Address), body.CapacityPerson)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStoreNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, repository.ErrStoreExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "store name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteStore handles DELETE /v1/owner/stores/:id. Reservations and
// reviews attached to the store are removed in the same transaction.
func (h *OwnerStoreHandler) DeleteStore(c echo.Context) error {
	ownerID, err := getMemberID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}
	if err := h.Stores.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
		switch {
		case errors.Is(err, repository.ErrStoreNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

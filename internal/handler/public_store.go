// This file defines handlers for the public browsing API. These routes let
// unauthenticated users list stores and read their reviews. Sensitive
// fields (owner IDs, timestamps) are filtered from responses.

package handler

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-reservation/internal/model"
	"github.com/iliyamo/store-reservation/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
// It produces sanitized responses suitable for public consumption.
type PublicHandler struct {
	StoreRepo  *repository.StoreRepo
	ReviewRepo *repository.ReviewRepo
}

// PublicStore represents a store exposed via the public API. It contains
// only safe fields. DistanceKm is populated when the client supplied
// coordinates and sorted by distance.
type PublicStore struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	CapacityPerson int      `json:"capacity_person"`
	Rating         float64  `json:"rating"`
	DistanceKm     *float64 `json:"distance_km,omitempty"`
}

// PublicReview represents a review in public responses.
type PublicReview struct {
	ID      uint64  `json:"id"`
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
}

// ListStores handles GET /v1/stores. The sort query parameter selects the
// ordering: "name" (default), "rating" (descending), or "distance" which
// requires lat and lng parameters and sorts nearest first.
func (h *PublicHandler) ListStores(c echo.Context) error {
	ctx := c.Request().Context()
	sortBy := strings.ToLower(strings.TrimSpace(c.QueryParam("sort")))

	switch sortBy {
	case "", "name":
		stores, err := h.StoreRepo.ListByName(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": toPublicStores(stores)})
	case "rating":
		stores, err := h.StoreRepo.ListByRating(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": toPublicStores(stores)})
	case "distance":
		lat, errLat := strconv.ParseFloat(c.QueryParam("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.QueryParam("lng"), 64)
		if errLat != nil || errLng != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "lat and lng are required for distance sort"})
		}
		stores, err := h.StoreRepo.ListAll(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		out := toPublicStores(stores)
		for i, s := range stores {
			d := haversineKm(lat, lng, s.Latitude, s.Longitude)
			out[i].DistanceKm = &d
		}
		sort.Slice(out, func(i, j int) bool { return *out[i].DistanceKm < *out[j].DistanceKm })
		return c.JSON(http.StatusOK, echo.Map{"items": out})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown sort: use name, rating or distance"})
}

// GetStore handles GET /v1/stores/:id.
func (h *PublicHandler) GetStore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.StoreRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, PublicStore{
		ID:             s.ID,
		Name:           s.Name,
		Address:        s.Address,
		CapacityPerson: s.CapacityPerson,
		Rating:         s.Rating,
	})
}

// ListStoreReviews handles GET /v1/stores/:id/reviews.
func (h *PublicHandler) ListStoreReviews(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.StoreRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	reviews, err := h.ReviewRepo.ListByStore(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicReview, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, PublicReview{ID: rv.ID, Content: rv.Content, Rating: rv.Rating})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

func toPublicStores(stores []*model.Store) []PublicStore {
	out := make([]PublicStore, 0, len(stores))
	for _, s := range stores {
		out = append(out, PublicStore{
			ID:             s.ID,
			Name:           s.Name,
			Address:        s.Address,
			CapacityPerson: s.CapacityPerson,
			Rating:         s.Rating,
		})
	}
	return out
}

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

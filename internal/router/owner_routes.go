package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-reservation/internal/handler"    // owner handlers
	"github.com/iliyamo/store-reservation/internal/middleware" // JWT + role middlewares
)

// RegisterOwner registers OWNER-scoped endpoints under /v1/owner.
// All routes require a valid JWT and OWNER role.
func RegisterOwner(e *echo.Echo, s *handler.OwnerStoreHandler, r *handler.OwnerReservationHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Stores ----
	g.POST("/stores", s.CreateStore)
	g.GET("/stores", s.ListMyStores)
	g.PUT("/stores/:id", s.UpdateStore)
	g.PATCH("/stores/:id", s.UpdateStore) // allow partial/semantic updates via PATCH as well
	g.DELETE("/stores/:id", s.DeleteStore)

	// ---- Reservations ----
	// List incoming reservations for one of the owner's stores.  The
	// optional ?date=YYYY-MM-DD parameter narrows the listing to a day.
	g.GET("/stores/:id/reservations", r.ListStoreReservations)
	// Approve or decline a pending reservation.
	g.POST("/reservations/:id/confirm", r.ConfirmReservation)
	g.POST("/reservations/:id/reject", r.RejectReservation)
}

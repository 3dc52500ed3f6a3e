package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-reservation/internal/handler"
	"github.com/iliyamo/store-reservation/internal/middleware"
)

// RegisterMember registers member-scoped endpoints under /v1.  All routes
// require a valid JWT and the USER role.  Members can book reservations,
// amend or cancel them, record their arrival and write reviews for stores
// they have visited.
func RegisterMember(e *echo.Echo, r *handler.MemberReservationHandler, rv *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER"),
	)

	// ---- Reservations ----
	g.POST("/stores/:id/reservations", r.CreateReservation)
	g.GET("/my-reservations", r.ListMyReservations)
	g.GET("/reservations/:id", r.GetReservation)
	g.PATCH("/reservations/:id", r.UpdateReservation)
	g.DELETE("/reservations/:id", r.DeleteReservation)
	// Recording a visit marks the reservation attended; arriving past the
	// window rejects it instead.
	g.POST("/reservations/:id/visit", r.RecordVisit)

	// ---- Reviews ----
	g.POST("/stores/:id/reviews", rv.CreateReview)
	g.GET("/my-reviews", rv.ListMyReviews)
	g.GET("/reviews/:id", rv.GetReview)
	g.PATCH("/reviews/:id", rv.UpdateReview)
	g.DELETE("/reviews/:id", rv.DeleteReview)
}

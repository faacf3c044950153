package router

import (
	"github.com/hanriver/taxi-booking/internal/handler"
	"github.com/hanriver/taxi-booking/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterOrders registers the booking endpoints under /v1.  All routes
// require a valid JWT: orders always belong to the authenticated user.
// Users can book a departure (optionally with a return leg), list their
// own orders and cancel an order they own.  Extra middleware (rate
// limiting) runs before the JWT check.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		append(mw, middleware.JWTAuth(jwtSecret))...,
	)
	g.POST("/orders", h.CreateOrder)
	g.GET("/orders", h.ListOrders)
	g.DELETE("/orders/:id", h.CancelOrder)
}

// RegisterReviews registers the authenticated review endpoints.  Listing a
// driver's reviews stays on the public router; writing and deleting require
// a session.
func RegisterReviews(e *echo.Echo, h *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
	)
	g.POST("/taxidrivers/:id/reviews", h.CreateReview)
	g.DELETE("/reviews/:id", h.DeleteReview)
}

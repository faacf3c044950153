package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hanriver/taxi-booking/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  These routes serve river stations, taxi drivers, coupon
// banners and schedule search, and apply no JWT middleware so that guests
// can explore routes before signing up.  The optional extra middleware
// (rate limiting, response caching) is applied to this group only: browse
// traffic is read-heavy and cacheable, booking traffic is not.
func RegisterPublic(e *echo.Echo, p *handler.BrowseHandler, r *handler.ReviewHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	// List every river station together with its arriving course count.
	g.GET("/locations", p.ListLocations)
	// Detail view for a single station.
	g.GET("/locations/:id", p.GetLocation)
	// List taxi drivers; ?sort=rating orders by average rating instead of
	// review count.
	g.GET("/taxidrivers", p.ListDrivers)
	// Detail view for a single driver.
	g.GET("/taxidrivers/:id", p.GetDriver)
	// Reviews for a single driver, newest first.
	g.GET("/taxidrivers/:id/reviews", r.ListReviews)
	// Coupon banners for the landing page.
	g.GET("/coupons", p.ListCoupons)
	// Search departures with remaining seats by station and date.
	g.GET("/search/schedules", p.SearchSchedules)
	// Detail view for a single schedule, shown before booking.
	g.GET("/schedules/:id", p.GetSchedule)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hanriver/taxi-booking/internal/repository"
	"github.com/labstack/echo/v4"
)

// BrowseHandler serves the unauthenticated browse endpoints: river
// stations, taxi drivers, coupon banners and schedule search.  These
// are plain read-only projections over the store; the interesting
// seat-ledger behaviour lives in OrderHandler.
type BrowseHandler struct {
	LocationRepo *repository.LocationRepo
	DriverRepo   *repository.DriverRepo
	CouponRepo   *repository.CouponRepo
	ScheduleRepo *repository.ScheduleRepo
}

// NewBrowseHandler constructs a BrowseHandler.  All dependencies must
// be non-nil.
func NewBrowseHandler(locationRepo *repository.LocationRepo, driverRepo *repository.DriverRepo, couponRepo *repository.CouponRepo, scheduleRepo *repository.ScheduleRepo) *BrowseHandler {
	if locationRepo == nil || driverRepo == nil || couponRepo == nil || scheduleRepo == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{
		LocationRepo: locationRepo,
		DriverRepo:   driverRepo,
		CouponRepo:   couponRepo,
		ScheduleRepo: scheduleRepo,
	}
}

// ListLocations handles GET /v1/locations.
func (h *BrowseHandler) ListLocations(c echo.Context) error {
	stations, err := h.LocationRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"station": stations})
}

// GetLocation handles GET /v1/locations/:id.
func (h *BrowseHandler) GetLocation(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}
	station, err := h.LocationRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"station": station})
}

// ListDrivers handles GET /v1/taxidrivers.  The optional ?sort= query
// selects the ordering: "rating" for average rating, "review" (or
// anything else) for review count.
func (h *BrowseHandler) ListDrivers(c echo.Context) error {
	sort := c.QueryParam("sort")
	if sort != repository.DriverSortRating {
		sort = repository.DriverSortReview
	}
	drivers, err := h.DriverRepo.List(c.Request().Context(), sort)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"drivers": drivers})
}

// GetDriver handles GET /v1/taxidrivers/:id.
func (h *BrowseHandler) GetDriver(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}
	driver, err := h.DriverRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrDriverNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"driver": driver})
}

// ListCoupons handles GET /v1/coupons.
func (h *BrowseHandler) ListCoupons(c echo.Context) error {
	banners, err := h.CouponRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"banner": banners})
}

// SearchSchedules handles GET /v1/search/schedules.  Filters:
// ?departure= & ?arrival= (location code or name), ?date=YYYY-MM-DD,
// plus ?page= and ?page_size= pagination.
func (h *BrowseHandler) SearchSchedules(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	q := repository.ScheduleSearchQuery{
		Departure: c.QueryParam("departure"),
		Arrival:   c.QueryParam("arrival"),
		Date:      c.QueryParam("date"),
		Page:      page,
		PageSize:  pageSize,
	}
	items, total, err := h.ScheduleRepo.SearchAvailable(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": total,
	})
}

// GetSchedule handles GET /v1/schedules/:id, the detail view shown
// before booking.
func (h *BrowseHandler) GetSchedule(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}
	schedule, err := h.ScheduleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"schedule": schedule})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/hanriver/taxi-booking/internal/model"
	"github.com/hanriver/taxi-booking/internal/repository"
	"github.com/labstack/echo/v4"
)

// ReviewHandler serves driver review endpoints.  Creating and deleting
// a review require authentication; listing does not.
type ReviewHandler struct {
	ReviewRepo *repository.ReviewRepo
	DriverRepo *repository.DriverRepo
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviewRepo *repository.ReviewRepo, driverRepo *repository.DriverRepo) *ReviewHandler {
	if reviewRepo == nil || driverRepo == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{ReviewRepo: reviewRepo, DriverRepo: driverRepo}
}

type reviewReq struct {
	Rating *int   `json:"rating"`
	Review string `json:"review"`
}

// CreateReview handles POST /v1/taxidrivers/:id/reviews.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_required"})
	}
	driverID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || driverID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}

	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no_body"})
	}
	if req.Rating == nil || req.Review == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "key_error"})
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_rating"})
	}

	ctx := c.Request().Context()
	ok, err := h.DriverRepo.Exists(ctx, driverID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}

	rv := model.DriverReview{
		TaxiDriverID: driverID,
		UserID:       userID,
		Rating:       *req.Rating,
		Review:       req.Review,
	}
	if _, err := h.ReviewRepo.Create(ctx, rv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "success"})
}

// ListReviews handles GET /v1/taxidrivers/:id/reviews.
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	driverID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || driverID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}
	reviews, err := h.ReviewRepo.ListByDriver(c.Request().Context(), driverID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"review": reviews})
}

// DeleteReview handles DELETE /v1/reviews/:id.  Only the author may
// delete their review.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "login_required"})
	}
	reviewID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || reviewID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
	}
	if err := h.ReviewRepo.Delete(c.Request().Context(), reviewID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid_id"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid_user"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "database_error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "success"})
}

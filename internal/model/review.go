package model

// DriverReview is a customer review of a driver with a 1-5 rating.
//
// Fields:
//  ID           – primary key identifier.
//  TaxiDriverID – driver being reviewed.
//  UserID       – author of the review.
//  Rating       – integer rating, 1 to 5.
//  Review       – review body text.
type DriverReview struct {
	ID           uint64 // driver_reviews.id
	TaxiDriverID uint64 // driver_reviews.taxi_driver_id
	UserID       uint64 // driver_reviews.user_id
	Rating       int    // driver_reviews.rating
	Review       string // driver_reviews.review
}

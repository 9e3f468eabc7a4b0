package reviews

import (
	"time"

	"github.com/google/uuid"
)

type CreateInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Title     *string   `json:"title,omitempty" validate:"omitempty,max=200"`
	Comment   *string   `json:"comment,omitempty" validate:"omitempty,max=4000"`
}

type DTO struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"userId"`
	UserName           string     `json:"userName"`
	ProductID          uuid.UUID  `json:"productId"`
	ProductName        string     `json:"productName"`
	OrderID            *uuid.UUID `json:"orderId,omitempty"`
	Rating             int        `json:"rating"`
	Title              *string    `json:"title,omitempty"`
	Comment            *string    `json:"comment,omitempty"`
	IsVerifiedPurchase bool       `json:"isVerifiedPurchase"`
	HelpfulCount       int        `json:"helpfulCount"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func fromRow(r reviewRow) DTO {
	return DTO{
		ID:                 r.ID,
		UserID:             r.UserID,
		UserName:           r.UserName,
		ProductID:          r.ProductID,
		ProductName:        r.ProductName,
		OrderID:            r.OrderID,
		Rating:             r.Rating,
		Title:              r.Title,
		Comment:            r.Comment,
		IsVerifiedPurchase: r.IsVerifiedPurchase,
		HelpfulCount:       r.HelpfulCount,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func fromRows(rows []reviewRow) []DTO {
	out := make([]DTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out
}

// Page is a zero-based offset page of reviews.
type Page struct {
	Reviews    []DTO `json:"reviews"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"totalElements"`
	TotalPages int   `json:"totalPages"`
}

type RatingShare struct {
	Rating     int     `json:"rating"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Stats struct {
	AverageRating      float64       `json:"averageRating"`
	TotalReviews       int64         `json:"totalReviews"`
	RatingDistribution []RatingShare `json:"ratingDistribution"`
}

// buildStats fills all five star buckets, including empty ones.
func buildStats(buckets []ratingBucket) Stats {
	shares := make([]RatingShare, 5)
	for i := range shares {
		shares[i].Rating = i + 1
	}
	var total, weighted int64
	for _, b := range buckets {
		if b.Rating < 1 || b.Rating > 5 {
			continue
		}
		shares[b.Rating-1].Count = b.Count
		total += b.Count
		weighted += int64(b.Rating) * b.Count
	}
	stats := Stats{TotalReviews: total, RatingDistribution: shares}
	if total == 0 {
		return stats
	}
	stats.AverageRating = float64(weighted) / float64(total)
	for i := range shares {
		shares[i].Percentage = float64(shares[i].Count) / float64(total) * 100
	}
	return stats
}

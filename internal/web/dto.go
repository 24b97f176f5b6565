package web

import (
	"time"

	"github.com/easysks/easysks/internal/domain"
)

// reviewRequest is the POST /study/review body.
type reviewRequest struct {
	CardID           string     `json:"card_id" binding:"required"`
	Rating           int        `json:"rating" binding:"required"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ReviewDurationMS *int       `json:"review_duration_ms,omitempty" binding:"omitempty,min=0"`
}

type queueResponse struct {
	Cards []domain.StudyCard `json:"cards"`
	Count int                `json:"count"`
}

type topicResponse struct {
	Topic domain.Topic `json:"topic"`
	Label string       `json:"label"`
}

type meResponse struct {
	User  domain.AppUser `json:"user"`
	Roles []domain.Role  `json:"roles"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

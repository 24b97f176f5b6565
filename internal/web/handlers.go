package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/easysks/easysks/internal/apperr"
	"github.com/easysks/easysks/internal/domain"
	"github.com/easysks/easysks/internal/study"
)

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) handleTopics() gin.HandlerFunc {
	return func(c *gin.Context) {
		topics := domain.AllTopics()
		out := make([]topicResponse, 0, len(topics))
		for _, t := range topics {
			out = append(out, topicResponse{Topic: t, Label: t.Label()})
		}
		c.JSON(http.StatusOK, gin.H{"topics": out})
	}
}

// handleQueue serves both queue endpoints; fetch selects due or practice.
func (s *Server) handleQueue(fetch func(ctx context.Context, req study.QueueRequest) ([]domain.StudyCard, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.auth.CurrentUser(c)
		if !ok {
			s.respondError(c, apperr.Unauthorized("unauthorized", "no user on request"))
			return
		}

		req := study.QueueRequest{UserID: user.ID}

		if raw := c.Query("topic"); raw != "" {
			topic, err := domain.ParseTopic(raw)
			if err != nil {
				s.respondError(c, apperr.InvalidInput("invalid_topic", "unknown topic %q", raw))
				return
			}
			req.Topic = &topic
		}
		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				s.respondError(c, apperr.InvalidInput("invalid_limit", "limit must be a positive integer"))
				return
			}
			req.Limit = limit
		}
		if raw := c.Query("as_of"); raw != "" {
			asOf, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				s.respondError(c, apperr.InvalidInput("invalid_as_of", "as_of must be an RFC 3339 timestamp"))
				return
			}
			req.AsOf = &asOf
		}

		cards, err := fetch(c.Request.Context(), req)
		if err != nil {
			s.respondError(c, err)
			return
		}
		if cards == nil {
			cards = []domain.StudyCard{}
		}
		c.JSON(http.StatusOK, queueResponse{Cards: cards, Count: len(cards)})
	}
}

func (s *Server) handleReview() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.auth.CurrentUser(c)
		if !ok {
			s.respondError(c, apperr.Unauthorized("unauthorized", "no user on request"))
			return
		}

		var body reviewRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			s.respondError(c, apperr.InvalidInput("invalid_body", "invalid review payload: %v", err))
			return
		}

		result, err := s.study.ReviewCard(c.Request.Context(), study.ReviewRequest{
			UserID:     user.ID,
			CardID:     body.CardID,
			Rating:     body.Rating,
			ReviewedAt: body.ReviewedAt,
			DurationMS: body.ReviewDurationMS,
		})
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (s *Server) handleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.auth.CurrentUser(c)
		if !ok {
			s.respondError(c, apperr.Unauthorized("unauthorized", "no user on request"))
			return
		}
		summary, err := s.study.Dashboard(c.Request.Context(), user.ID)
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func (s *Server) handleGetCard() gin.HandlerFunc {
	return func(c *gin.Context) {
		card, err := s.study.GetCard(c.Request.Context(), c.Param("card_id"))
		if err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, card)
	}
}

func (s *Server) handleMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := s.auth.CurrentUser(c)
		if !ok {
			s.respondError(c, apperr.Unauthorized("unauthorized", "no user on request"))
			return
		}
		roles := []domain.Role{}
		if s.auth.Identity != nil {
			if identity, ok := s.auth.Identity(c); ok && identity.Roles != nil {
				roles = identity.Roles
			}
		}
		c.JSON(http.StatusOK, meResponse{User: user, Roles: roles})
	}
}

package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/breadMSA/Calories/services"

	"github.com/gin-gonic/gin"
)

type SummaryController struct {
	Records *services.RecordService
	Users   *services.UserService
}

func NewSummaryController(records *services.RecordService, users *services.UserService) *SummaryController {
	return &SummaryController{Records: records, Users: users}
}

// GET /api/summary?granularity=day|week|month|year&date=YYYY-MM-DD
// date defaults to today. Each request builds a fresh aggregation session,
// so the per-date cache lives exactly as long as one rendered view.
func (sc *SummaryController) GetSummary(c *gin.Context) {
	granularity := services.Granularity(c.DefaultQuery("granularity", string(services.GranularityDay)))
	switch granularity {
	case services.GranularityDay, services.GranularityWeek, services.GranularityMonth, services.GranularityYear:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be day, week, month or year"})
		return
	}

	anchor := time.Now().Local()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD"})
			return
		}
		anchor = parsed
	}

	profile, err := sc.Users.GetProfile(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		log.Printf("summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	session := services.NewSummarySession(sc.Records, profile.Targets)
	ctx := c.Request.Context()

	switch granularity {
	case services.GranularityDay:
		c.JSON(http.StatusOK, gin.H{"granularity": granularity, "day": session.Day(ctx, anchor)})
	case services.GranularityWeek:
		c.JSON(http.StatusOK, gin.H{"granularity": granularity, "week": session.Week(ctx, anchor)})
	case services.GranularityMonth:
		c.JSON(http.StatusOK, gin.H{"granularity": granularity, "month": session.Month(ctx, anchor)})
	case services.GranularityYear:
		c.JSON(http.StatusOK, gin.H{"granularity": granularity, "year": session.Year(ctx, anchor)})
	}
}

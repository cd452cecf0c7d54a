package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/breadMSA/Calories/services"
	"github.com/breadMSA/Calories/utils"

	"github.com/gin-gonic/gin"
)

type AnalyzeController struct {
	Gemini *services.GeminiService
}

func NewAnalyzeController(gemini *services.GeminiService) *AnalyzeController {
	return &AnalyzeController{Gemini: gemini}
}

type analyzeRequest struct {
	Image string `json:"image"`
}

// POST /api/analyze-food  body = {image: base64}
// Always answers 200 with a sanitized estimate when the model replied at
// all; 429 when the upstream reports quota or rate limits; 500 otherwise.
// Error messages stay generic and localized, details go to the log only.
func (ac *AnalyzeController) AnalyzeFood(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image data required"})
		return
	}

	result, err := ac.Gemini.AnalyzeFood(c.Request.Context(), req.Image)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "API 配額已達上限，請稍後再試"})
			return
		}
		log.Printf("analyze-food: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "分析失敗，請稍後再試"})
		return
	}

	if utils.S3Enabled() {
		// archive failures only log, never fail the response
		go func(image string) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := utils.ArchiveBase64Image(ctx, image, "analyzed-food"); err != nil {
				log.Printf("photo archive failed: %v", err)
			}
		}(req.Image)
	}

	c.JSON(http.StatusOK, result)
}

package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/breadMSA/Calories/models"
	"github.com/breadMSA/Calories/services"

	"github.com/gin-gonic/gin"
)

type RecordController struct {
	Records *services.RecordService
	RT      *services.RealtimeHub
}

func NewRecordController(records *services.RecordService, rt *services.RealtimeHub) *RecordController {
	return &RecordController{Records: records, RT: rt}
}

// GET /api/records?date=YYYY-MM-DD
// An unlogged date answers 200 with a zero-valued record, never 404.
func (rc *RecordController) GetRecords(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date parameter required"})
		return
	}

	rec, err := rc.Records.FetchDay(c.Request.Context(), date)
	if err != nil {
		log.Printf("records GET %s: %v", date, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// POST /api/records  body = FoodEntry (full object incl. id and date)
func (rc *RecordController) AddEntry(c *gin.Context) {
	var entry models.FoodEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry data"})
		return
	}

	rec, err := rc.Records.UpsertEntry(c.Request.Context(), entry)
	if err != nil {
		rc.fail(c, err, "records POST")
		return
	}
	rc.broadcast(rec)
	c.JSON(http.StatusOK, rec)
}

// PUT /api/records  body = FoodEntry; strict replace of an existing entry.
func (rc *RecordController) UpdateEntry(c *gin.Context) {
	var entry models.FoodEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry data"})
		return
	}

	rec, err := rc.Records.UpdateEntry(c.Request.Context(), entry)
	if err != nil {
		rc.fail(c, err, "records PUT")
		return
	}
	rc.broadcast(rec)
	c.JSON(http.StatusOK, rec)
}

// DELETE /api/records?date=&id=
// 404 only when the whole day record is absent; an unknown id within an
// existing record is a 200 no-op.
func (rc *RecordController) DeleteEntry(c *gin.Context) {
	date, id := c.Query("date"), c.Query("id")
	if date == "" || id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date and ID parameters required"})
		return
	}

	rec, err := rc.Records.DeleteEntry(c.Request.Context(), date, id)
	if err != nil {
		rc.fail(c, err, "records DELETE")
		return
	}
	rc.broadcast(rec)
	c.JSON(http.StatusOK, rec)
}

func (rc *RecordController) broadcast(rec models.DayRecord) {
	if rc.RT != nil {
		rc.RT.BroadcastRecord(rec)
	}
}

func (rc *RecordController) fail(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry data"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	default:
		log.Printf("%s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

package routes

import (
	"github.com/breadMSA/Calories/controllers"
	"github.com/breadMSA/Calories/middlewares"
	"github.com/breadMSA/Calories/services"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the API on top of any KVStore so tests can run against
// an in-memory store.
func SetupRouter(store services.KVStore) *gin.Engine {
	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.RequestIDMiddleware())

	hub := services.NewRealtimeHub()
	recordSvc := services.NewRecordService(store)
	userSvc := services.NewUserService(store)

	recordCtl := controllers.NewRecordController(recordSvc, hub)
	userCtl := controllers.NewUserController(userSvc)
	summaryCtl := controllers.NewSummaryController(recordSvc, userSvc)
	analyzeCtl := controllers.NewAnalyzeController(services.NewGeminiService())
	realtimeCtl := controllers.NewRealtimeController(hub)

	api := r.Group("/api")
	{
		api.GET("/records", recordCtl.GetRecords)
		api.POST("/records", recordCtl.AddEntry)
		api.PUT("/records", recordCtl.UpdateEntry)
		api.DELETE("/records", recordCtl.DeleteEntry)

		api.GET("/user", userCtl.GetProfile)
		api.POST("/user", userCtl.SaveProfile)
		api.PUT("/user", userCtl.SaveProfile)
		api.GET("/targets/recommended", userCtl.RecommendedTargets)

		api.POST("/analyze-food", analyzeCtl.AnalyzeFood)

		api.GET("/summary", summaryCtl.GetSummary)
	}

	r.GET("/ws", realtimeCtl.RecordsWS)

	return r
}

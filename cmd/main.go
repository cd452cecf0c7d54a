package main

import (
	"os"

	"github.com/breadMSA/Calories/config"
	"github.com/breadMSA/Calories/routes"
	"github.com/breadMSA/Calories/services"
	"github.com/breadMSA/Calories/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()

	store := services.NewGormKVStore(config.DB)
	r := routes.SetupRouter(store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

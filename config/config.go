package config

import (
	"fmt"
	"log"
	"os"

	"github.com/breadMSA/Calories/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB loads the environment, connects to Postgres and migrates the
// key-value table every record and the profile live in.
func InitDB() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := DB.AutoMigrate(&models.KVRecord{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
}

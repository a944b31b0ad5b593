package db

import (
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/meditrack/hospital-api/config"
)

var DB *gorm.DB

func GetDB() *gorm.DB {
	return DB
}

// Init establishes the DB connection without running migrations
func Init() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}
	config.LoadConfig()

	if config.AppConfig.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(config.AppConfig.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	DB = db
	log.Println("✅ Database connection established successfully!")
}

package db

import (
	"fmt"
	"log"

	"github.com/meditrack/hospital-api/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.Hospital{},
		&models.Doctor{},
		&models.Patient{},
		&models.WeeklyShift{},
		&models.ShiftTimingConfig{},
		&models.TimeOffEntry{},
		&models.Slot{},
		&models.Appointment{},
		&models.QueueEntry{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}

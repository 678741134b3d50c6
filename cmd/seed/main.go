package main

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/k12fleet/assetdesk/internal/models"
)

func main() {
	// Connect to database
	db, err := gorm.Open(sqlite.Open("./data/assetdesk.db"), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.AuditSession{},
		&models.AuditPerson{},
		&models.DeviceRecord{},
		&models.Note{},
		&models.Notification{},
		&models.NotificationProvider{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	// Seed a demo session with a small roster
	session := models.AuditSession{Creator: "seed"}
	if err := db.Create(&session).Error; err != nil {
		log.Fatal("Failed to create demo session:", err)
	}

	people := []models.AuditPerson{
		{SessionID: session.ID, Name: "Jordan Avery", Grade: "9", Advisor: "Smith"},
		{SessionID: session.ID, Name: "Casey Nguyen", Grade: "10", Advisor: "Jones"},
		{SessionID: session.ID, Name: "Riley Okafor", Grade: "11", Advisor: "Garcia"},
		{SessionID: session.ID, Name: "Sam Whitaker", Grade: "12", Advisor: "Lee"},
	}
	if err := db.Create(&people).Error; err != nil {
		log.Fatal("Failed to seed demo roster:", err)
	}
	if err := db.Model(&session).Update("person_count", len(people)).Error; err != nil {
		log.Fatal("Failed to update person count:", err)
	}

	fmt.Printf("✓ Seeded demo session %s with %d persons\n", session.UUID, len(people))
}

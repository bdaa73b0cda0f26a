package db

import (
	"log"

	"shared-daily-menu/internal/domain"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.Room{},
		&domain.Device{},
		&domain.DailyMenu{},
		&domain.MenuItem{},
		&domain.Template{},
		&domain.TemplateItem{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"eventflow/internal/config"
	"eventflow/internal/database"
	"eventflow/internal/repositories"
	"eventflow/internal/services"
)

func main() {
	file := flag.String("file", "", "Path to the registration CSV export")
	flag.Parse()

	if *file == "" {
		log.Fatal("Usage: go run cmd/import-attendees/main.go -file <attendees.csv>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewConnection(database.Config{
		Driver:   cfg.Database.Driver,
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open CSV file:", err)
	}
	defer f.Close()

	importer := services.NewImportService(repositories.NewAttendeeRepository(db.DB))
	count, err := importer.Import(f)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Printf("Imported %d attendees\n", count)
}

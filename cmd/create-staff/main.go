package main

import (
	"flag"
	"fmt"
	"log"

	"eventflow/internal/config"
	"eventflow/internal/database"
	"eventflow/internal/repositories"
	"eventflow/internal/services"
	"eventflow/internal/utils"
)

func main() {
	var (
		username = flag.String("username", "", "Staff username")
		password = flag.String("password", "", "Password (generated when omitted)")
	)
	flag.Parse()

	if *username == "" {
		log.Fatal("Usage: go run cmd/create-staff/main.go -username <name> [-password <pass>]")
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

	pass := *password
	generated := false
	if pass == "" {
		pass, err = utils.GenerateSecureToken(12)
		if err != nil {
			log.Fatal("Failed to generate password:", err)
		}
		generated = true
	}

	authService := services.NewAuthService(repositories.NewStaffRepository(db.DB))
	staff, err := authService.CreateStaff(*username, pass)
	if err != nil {
		log.Fatal("Failed to create staff account:", err)
	}

	fmt.Printf("Staff account created\n")
	fmt.Printf("  ID:       %s\n", staff.ID)
	fmt.Printf("  Username: %s\n", staff.Username)
	if generated {
		fmt.Printf("  Password: %s\n", pass)
	}
}

// Package main seeds the staff account used by the admin dashboard.
package main

import (
	"log"
	"os"

	"wagmi/internal/config"
	"wagmi/internal/models"
	"wagmi/internal/repositories"
	"wagmi/internal/services/referral"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_USERNAME, ADMIN_EMAIL, and ADMIN_PASSWORD must be set in environment")
	}

	db, err := repositories.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Printf("failed to get database instance: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Printf("failed to close database connection: %v", err)
		}
	}()

	users := repositories.NewUserRepository(db, nil)

	if _, err := users.GetByUsername(adminUsername); err == nil {
		log.Println("admin user already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.User{
		Username: adminUsername,
		Email:    adminEmail,
		Password: string(hashed),
		IsStaff:  true,
	}
	profile := &models.Profile{ReferralCode: referral.GenerateCode()}

	if err := users.CreateWithProfile(admin, profile); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	log.Println("admin account created successfully")
}

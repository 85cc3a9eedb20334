package main

import (
	"log"
	"os"

	"github.com/rvemuri2/helix-backend/internal/constant"
	"github.com/rvemuri2/helix-backend/internal/model"
	"github.com/rvemuri2/helix-backend/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Seeds a demo user with one sequence so the panel has something to show on
// a fresh install.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo data...")

	user := model.User{Id: "dummy_user_123"}
	if err := db.FirstOrCreate(&user).Error; err != nil {
		color.Red("Failed to seed user: %v", err)
		os.Exit(1)
	}
	color.Green("User: %s", user.Id)

	sequence := model.Sequence{
		UserId: user.Id,
		Title:  "Test Sequence",
	}
	if err := db.Create(&sequence).Error; err != nil {
		color.Red("Failed to seed sequence: %v", err)
		os.Exit(1)
	}
	color.Green("Sequence: %s (%s)", sequence.Title, sequence.Id)

	steps := []model.SequenceStep{
		{
			SequenceId: sequence.Id,
			StepNumber: 1,
			Title:      "Intro Step",
			Content:    "Hey {{First_Name}}, welcome to our dummy sequence!",
		},
		{
			SequenceId: sequence.Id,
			StepNumber: 2,
			Title:      "Follow-Up Step",
			Content:    "Here's more information about our dummy data.",
		},
	}
	if err := db.Create(&steps).Error; err != nil {
		color.Red("Failed to seed steps: %v", err)
		os.Exit(1)
	}
	color.Green("Steps: %d", len(steps))

	greeting := model.ChatMessage{
		UserId:  user.Id,
		Message: constant.DefaultGreeting,
		Sender:  constant.ChatMessageSenderAI,
	}
	if err := db.Create(&greeting).Error; err != nil {
		color.Red("Failed to seed chat message: %v", err)
		os.Exit(1)
	}
	color.Green("Chat greeting seeded")

	color.Cyan("Dummy data inserted successfully!")
}

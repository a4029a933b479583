// Command main runs the database seeder for AlumNet.
package main

import (
	"flag"
	"log"

	"alumnet/internal/config"
	"alumnet/internal/database"
	"alumnet/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	perUser := flag.Int("connections", 5, "Connection attempts per user")
	sparkDays := flag.Int("spark-days", 7, "Days of daily spark questions to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded accounts cannot log in")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d connections/user, clean=%v\n", *numUsers, *perUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:           *numUsers,
		ConnectionsPerUser: *perUser,
		GemReward:          cfg.ConnectionGemReward,
		SparkDays:          *sparkDays,
		SkipBcrypt:         *fast,
		ShouldClean:        *shouldClean,
	})
	if err != nil {
		log.Fatalf("❌ Seeder setup failed: %v", err)
	}

	report, err := s.Run()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Done: %d users, %d connections, %d listings, %d spark questions",
		report.Users, report.Connections, report.Listings, report.SparkQuestions)
	if !*fast {
		log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
	}
}

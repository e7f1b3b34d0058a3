// Command seed populates the database with demo data for development.
package main

import (
	"flag"
	"log"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/seed"
)

func main() {
	users := flag.Int("users", seed.DefaultOptions.Users, "number of users to create")
	questions := flag.Int("questions", seed.DefaultOptions.Questions, "number of questions to create")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{Users: *users, Questions: *questions}
	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users and %d questions", opts.Users, opts.Questions)
}

// Command main runs the database seeder for SpeedGarage.
package main

import (
	"flag"
	"log"

	"speedgarage/internal/config"
	"speedgarage/internal/database"
	"speedgarage/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 25, "Number of users to create")
	numReviews := flag.Int("reviews", 100, "Number of reviews to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	presetFile := flag.String("preset-file", "", "YAML file with seeding presets")
	presetName := flag.String("preset", "", "Apply a named preset from the preset file")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *presetName != "" {
		if *presetFile == "" {
			log.Fatal("❌ -preset requires -preset-file")
		}
		presets, err := seed.LoadPresets(*presetFile)
		if err != nil {
			log.Fatalf("❌ Failed to load presets: %v", err)
		}
		preset, err := seed.FindPreset(presets, *presetName)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("Applying preset: %s\n", preset.Name)
		if err := seed.ApplyPreset(db, preset); err != nil {
			log.Fatalf("❌ Preset seeding failed: %v", err)
		}
	} else {
		err = seed.Seed(db, seed.Options{
			NumUsers:   *numUsers,
			NumReviews: *numReviews,
			Clean:      *shouldClean,
		})
		if err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}

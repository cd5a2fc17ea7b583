// Command import ingests spreadsheet/CSV exports of daily revenue or daily
// weather into the store. Thin ETL: parse, validate, upsert by date.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"lavanda/adapters/excel"
	"lavanda/adapters/postgres"
	"lavanda/internal/config"
	"lavanda/internal/migration"
)

func main() {
	file := flag.String("file", "", "path to the .xlsx or .csv export")
	kind := flag.String("kind", "revenue", "what the file contains: revenue or weather")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	reader := excel.NewDataReader(*file)
	switch *kind {
	case "revenue":
		observations, err := reader.ReadRevenue()
		if err != nil {
			log.Fatalf("Failed to read revenue export: %v", err)
		}
		if err := postgres.NewRevenueRepository(db).UpsertRevenue(ctx, observations); err != nil {
			log.Fatalf("Failed to store revenue: %v", err)
		}
		log.Printf("Imported %d revenue days from %s", len(observations), *file)
	case "weather":
		observations, err := reader.ReadWeather()
		if err != nil {
			log.Fatalf("Failed to read weather export: %v", err)
		}
		if err := postgres.NewWeatherRepository(db).UpsertWeather(ctx, observations); err != nil {
			log.Fatalf("Failed to store weather: %v", err)
		}
		log.Printf("Imported %d weather days from %s", len(observations), *file)
	default:
		log.Fatalf("Unknown -kind %q (want revenue or weather)", *kind)
	}
}

// Command backfill runs the walk-forward historical simulation: one freshly
// trained model per date, predictions upserted by date, and an end-of-run
// summary with accuracy aggregates.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"lavanda/adapters/postgres"
	"lavanda/app"
	"lavanda/domain/core"
	"lavanda/internal"
	"lavanda/internal/accuracy"
	"lavanda/internal/config"
	"lavanda/internal/featurize"
	"lavanda/internal/migration"
	"lavanda/internal/regress"
)

func main() {
	startFlag := flag.String("start", "", "first date to backfill (2006-01-02); defaults to BACKFILL_START or start of revenue history")
	endFlag := flag.String("end", "", "last date to backfill (2006-01-02); defaults to yesterday in the business timezone")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	location, err := appConfig.Location()
	if err != nil {
		log.Fatalf("Failed to resolve business timezone: %v", err)
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

	revenue := postgres.NewRevenueRepository(db)
	weather := postgres.NewWeatherRepository(db)
	predictions := postgres.NewPredictionRepository(db)

	builder := featurize.NewBuilder(featurize.Weights{
		Humidity:      appConfig.Forecast.HumidityWeight,
		Precipitation: appConfig.Forecast.PrecipWeight,
		SunDeficit:    appConfig.Forecast.SunDeficitWeight,
	})
	trainer := regress.NewTrainer(regress.DefaultConfig())
	logger := internal.DefaultLogger
	service := app.NewBackfillService(revenue, weather, predictions, builder, trainer, logger)

	cfg := app.DefaultBackfillConfig()
	cfg.ClosureThreshold = appConfig.Forecast.ClosureThreshold
	cfg.MarginFloor = appConfig.Forecast.MarginFloor
	cfg.End = core.Yesterday(location)

	if *endFlag != "" {
		if cfg.End, err = core.ParseDate(*endFlag); err != nil {
			log.Fatalf("Invalid -end: %v", err)
		}
	}
	switch {
	case *startFlag != "":
		if cfg.Start, err = core.ParseDate(*startFlag); err != nil {
			log.Fatalf("Invalid -start: %v", err)
		}
	case appConfig.Forecast.BackfillStart != "":
		if cfg.Start, err = core.ParseDate(appConfig.Forecast.BackfillStart); err != nil {
			log.Fatalf("Invalid BACKFILL_START: %v", err)
		}
	default:
		history, err := revenue.GetRevenueHistory(ctx)
		if err != nil {
			log.Fatalf("Failed to read revenue history: %v", err)
		}
		if len(history) == 0 {
			log.Fatal("No revenue history to backfill against")
		}
		cfg.Start = history[0].Date
	}

	summary, err := service.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("Backfill aborted: %v", err)
	}

	log.Printf("Backfill %s finished: range %s..%s saved=%d skipped=%d errored=%d",
		summary.RunID, summary.Start, summary.End, summary.Saved, summary.Skipped, summary.Errored)

	aggregator := accuracy.NewAggregator(predictions)
	rolling, err := aggregator.Rolling(ctx, cfg.End, appConfig.Forecast.RollingWindow)
	if err != nil {
		log.Printf("Could not compute rolling accuracy: %v", err)
		return
	}
	log.Printf("Rolling %d-day accuracy: %d days, avg abs error %.2f, avg |pct error| %.1f%% (%d closures excluded)",
		rolling.WindowDays, rolling.Days, rolling.AvgAbsError, rolling.AvgAbsPctError, rolling.ClosuresExcluded)
}

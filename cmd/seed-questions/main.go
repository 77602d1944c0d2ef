package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/careerflow/assessment-backend/internal/config"
	"github.com/careerflow/assessment-backend/internal/database"
	"github.com/careerflow/assessment-backend/internal/logger"
	"github.com/careerflow/assessment-backend/internal/questionbank"
	"github.com/careerflow/assessment-backend/internal/repository"
)

func main() {
	var dataDir string
	flag.StringVar(&dataDir, "data", "", "Directory with bank JSON files (default: DATA_DIR)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Printf("=== Seeding Question Banks from %s ===\n", dataDir)

	seeded := 0
	for _, slug := range questionbank.KnownSlugs {
		questions, err := questionbank.LoadFile(dataDir, slug)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", slug, err)
			continue
		}

		if err := questionRepo.ReplaceBank(ctx, slug, questions); err != nil {
			log.Fatal().Err(err).Str("bank", slug).Msg("Failed to replace bank")
		}

		fmt.Printf("Seeded %s with %d questions\n", slug, len(questions))
		seeded++
	}

	fmt.Printf("\nSeed completed! %d/%d banks loaded.\n", seeded, len(questionbank.KnownSlugs))
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/easysks/easysks/internal/catalog"
	"github.com/easysks/easysks/internal/config"
	"github.com/easysks/easysks/internal/logger"
	"github.com/easysks/easysks/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("seed", pflag.ExitOnError)
	configPath := flags.String("config", "config.yaml", "path to the configuration file")
	source := flags.String("source", "", "seed a single directory or git URL instead of the configured sources")
	cacheDir := flags.String("cache-dir", "catalog-cache", "directory for git source clones")
	flags.String("database.path", "", "path to the SQLite database")
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	var sources []catalog.Source
	if *source != "" {
		sources = []catalog.Source{{URL: *source}}
	} else {
		for _, src := range cfg.Catalog.Sources {
			sources = append(sources, catalog.Source{URL: src.URL, Ref: src.Ref, Subdir: src.Path})
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no catalog sources configured; pass --source or set catalog.sources")
	}

	seeder := catalog.NewSeeder(db, *cacheDir, log)
	report := seeder.Seed(context.Background(), sources)

	log.Info("seeding finished",
		zap.Int("sources", report.Sources),
		zap.Int("files", report.Files),
		zap.Int("cards", report.Cards),
		zap.Int("errors", len(report.Errors)))
	fmt.Printf("Seeded %d cards from %d files across %d sources.\n",
		report.Cards, report.Files, report.Sources)

	if len(report.Errors) > 0 {
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "- %v\n", e)
		}
		return fmt.Errorf("%d source(s) failed", len(report.Errors))
	}
	return nil
}

// Command migrate applies migrations/001_initial_schema.sql to the configured
// database with the Atlas CLI. The atlas binary must be on PATH.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"tutorlink/internal/handler/middleware"
	"tutorlink/internal/pkg/config"
	"tutorlink/internal/pkg/errs"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/kelseyhightower/envconfig"
)

type migrateConfig struct {
	DB     config.DBConfig
	Log    config.LogConfig
	DevURL string `envconfig:"MIGRATE_DEV_URL" default:"docker://postgres/17/dev"`
	Binary string `envconfig:"ATLAS_BIN" default:"atlas"`
}

func main() {
	schema := flag.String("schema", "migrations/001_initial_schema.sql", "desired schema file")
	dryRun := flag.Bool("dry-run", false, "print the plan without applying it")
	flag.Parse()

	var cfg migrateConfig
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := middleware.NewLogger(cfg.Log).GetSlogLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applied, err := apply(ctx, cfg, *schema, *dryRun)
	if err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migration finished", "schema", *schema, "statements", len(applied), "dry_run", *dryRun)
	for _, stmt := range applied {
		logger.Debug("statement", "sql", stmt)
	}
}

func apply(ctx context.Context, cfg migrateConfig, schema string, dryRun bool) ([]string, error) {
	if _, err := os.Stat(schema); err != nil {
		return nil, errs.Wrap(err, "schema file")
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, errs.Wrap(err, "working directory")
	}
	client, err := atlasexec.NewClient(wd, cfg.Binary)
	if err != nil {
		return nil, errs.Wrap(err, "atlas client")
	}
	res, err := client.SchemaApply(ctx, &atlasexec.SchemaApplyParams{
		URL:         cfg.DB.BuildDSN(),
		To:          "file://" + schema,
		DevURL:      cfg.DevURL,
		DryRun:      dryRun,
		AutoApprove: true,
	})
	if err != nil {
		return nil, errs.Wrap(err, "schema apply")
	}
	if dryRun {
		return res.Changes.Pending, nil
	}
	return res.Changes.Applied, nil
}

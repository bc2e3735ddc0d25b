package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/logger"
	"taskboard/internal/manager"
	"taskboard/internal/models"
	"taskboard/internal/storage"
)

func main() {
	var (
		envFile    string
		configFile string
		seed       bool
	)

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Create the tasks schema for the configured database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := config.LoadDatabase(envFile, configFile)
			if err != nil {
				return err
			}
			if db.Driver == config.DriverMemory {
				return fmt.Errorf("nothing to migrate for the %s driver", db.Driver)
			}
			return migrate(cmd.Context(), *db, seed)
		},
	}
	cmd.Flags().StringVar(&envFile, "env", "", "path to a .env file (default ./.env)")
	cmd.Flags().StringVar(&configFile, "config", "", "optional YAML config file (or CONFIG_FILE)")
	cmd.Flags().BoolVar(&seed, "seed", false, "insert sample tasks when the table is empty")

	ctx := context.Background()
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error(ctx, err, "migration failed")
		os.Exit(1)
	}
}

func migrate(ctx context.Context, db config.Database, seed bool) error {
	store, err := storage.Open(ctx, db)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info(ctx, "schema is up to date", "driver", db.Driver)

	if !seed {
		return nil
	}

	tm := manager.NewTaskManagerWithStorage(store)
	existing, err := tm.ListTasks(ctx, models.TaskFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info(ctx, "table not empty, skipping seed", "tasks", len(existing))
		return nil
	}

	for _, req := range sampleTasks(time.Now()) {
		if _, err := tm.CreateTask(ctx, req); err != nil {
			return fmt.Errorf("seed %q: %w", req.Title, err)
		}
	}
	logger.Info(ctx, "seeded sample tasks")
	return nil
}

func sampleTasks(now time.Time) []models.CreateTaskRequest {
	desc := "Two litres, semi-skimmed"
	done := true
	return []models.CreateTaskRequest{
		{Title: "Buy milk", Description: &desc, Tags: []string{"shopping"}, DueDate: models.DateOf(models.StartOfDay(now.AddDate(0, 0, 1)))},
		{Title: "Write quarterly report", Tags: []string{"work"}, DueDate: models.DateOf(models.StartOfDay(now.AddDate(0, 0, 7)))},
		{Title: "Book dentist", Tags: []string{"home", "health"}},
		{Title: "Renew passport", Completed: &done, Tags: []string{"home"}},
	}
}

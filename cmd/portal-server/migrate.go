package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wellness/portal/internal/config"
	"github.com/wellness/portal/internal/platform/db"
	"github.com/wellness/portal/internal/platform/mongostore"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the configured store (SQL migrations or Mongo indexes)",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()

			switch cfg.StoreDriver {
			case config.DriverPostgres:
				pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
				if err != nil {
					return err
				}
				defer pool.Close()

				count, err := db.NewMigrator(pool, dir).Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s) successfully.\n", count)

			case config.DriverMongo:
				ms, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
				if err != nil {
					return err
				}
				defer ms.Close(ctx)

				names, err := ms.EnsureIndexes(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Ensured %d index(es) on %s.\n", len(names), cfg.MongoDatabase)

			default:
				fmt.Printf("Nothing to migrate for store driver %q.\n", cfg.StoreDriver)
			}
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()

			if cfg.StoreDriver == config.DriverMongo {
				printIndexPlan()
				return nil
			}
			if cfg.StoreDriver != config.DriverPostgres {
				fmt.Printf("Store driver %q has no migrations.\n", cfg.StoreDriver)
				return nil
			}

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printIndexPlan() {
	indexes := mongostore.Indexes()
	colls := make([]string, 0, len(indexes))
	for c := range indexes {
		colls = append(colls, c)
	}
	sort.Strings(colls)

	fmt.Printf("%-12s %s\n", "COLLECTION", "INDEX")
	for _, c := range colls {
		for _, m := range indexes[c] {
			name := ""
			if m.Options != nil && m.Options.Name != nil {
				name = *m.Options.Name
			}
			fmt.Printf("%-12s %s\n", c, name)
		}
	}
}

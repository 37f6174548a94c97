package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rollcall/pkg/db"
	"rollcall/services/attendance"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rollcallctl",
		Short:         "Admin utility for the rollcall attendance service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newTokensCommand())
	cmd.AddCommand(newSyncCommand())
	return cmd
}

func databaseURL() (string, error) {
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		return "", errors.New("DATABASE_URL is required")
	}
	return dsn, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			dsn, err := databaseURL()
			if err != nil {
				return err
			}
			pool, err := db.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert lecturers, students and courses from a roster file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			dsn, err := databaseURL()
			if err != nil {
				return err
			}

			roster, err := attendance.LoadRosterFile(file)
			if err != nil {
				return err
			}

			orm, err := db.OpenORM(ctx, dsn)
			if err != nil {
				return err
			}
			defer func() { _ = db.CloseORM(orm) }()

			if err := attendance.SeedRoster(ctx, orm, roster); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d lecturers, %d students, %d courses\n",
				len(roster.Lecturers), len(roster.Students), len(roster.Courses))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Roster YAML file to load")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Check-in token operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTokensIssueCommand())
	return cmd
}

func newTokensIssueCommand() *cobra.Command {
	var (
		courseID string
		value    string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a check-in token for a course, revoking its active one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			dsn, err := databaseURL()
			if err != nil {
				return err
			}

			id, err := uuid.Parse(strings.TrimSpace(courseID))
			if err != nil {
				return fmt.Errorf("valid --course is required: %w", err)
			}

			orm, err := db.OpenORM(ctx, dsn)
			if err != nil {
				return err
			}
			defer func() { _ = db.CloseORM(orm) }()

			svc, err := attendance.NewTokenService(orm, ttl)
			if err != nil {
				return err
			}
			token, err := svc.Issue(ctx, id, value, time.Time{}, time.Time{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token %s expires %s\n",
				token.Value, token.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&courseID, "course", "", "Course UUID the token belongs to")
	cmd.Flags().StringVar(&value, "value", "", "Token value (short alphanumeric code)")
	cmd.Flags().DurationVar(&ttl, "ttl", attendance.DefaultTokenTTL, "How long the token stays valid")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Offline check-in reconciliation operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newSyncProcessPendingCommand())
	return cmd
}

func newSyncProcessPendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process-pending",
		Short: "Replay every unsynced offline check-in against current state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			dsn, err := databaseURL()
			if err != nil {
				return err
			}

			pool, err := db.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			orm, err := db.OpenORM(ctx, dsn)
			if err != nil {
				return err
			}
			defer func() { _ = db.CloseORM(orm) }()

			store := &attendance.Store{DB: pool, ORM: orm}
			tokens, err := attendance.NewTokenService(orm, attendance.DefaultTokenTTL)
			if err != nil {
				return err
			}
			sessions, err := attendance.NewSessionManager(store)
			if err != nil {
				return err
			}
			reconciler, err := attendance.NewReconciler(
				tokens,
				attendance.NewRosterStore(store),
				sessions,
				attendance.NewPendingQueue(store),
			)
			if err != nil {
				return err
			}

			result, err := reconciler.ProcessPending(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d failed %d of %d\n",
				result.Processed, result.Failed, result.Total)
			return nil
		},
	}
}

// Command healthtracker runs the patient health tracking service and its
// maintenance tasks.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"healthtracker/internal/adapter/postgres"
	"healthtracker/internal/app"
	"healthtracker/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "healthtracker",
		Short:         "Patient health tracking and risk assessment service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(assessCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger: JSON in production, console output
// in development.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger.Level(level)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			if err := postgres.MigrateDown(cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Println("Migrations reverted.")
			return nil
		},
	})

	return cmd
}

// assessCmd re-runs the risk assessment for one patient from the command
// line and prints the result.
func assessCmd() *cobra.Command {
	var patient string
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Reassess a patient's risk from their latest reading",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(patient, 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid --patient %q", patient)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.close()

			publisher := newPublisher(cfg)
			defer func() { _ = publisher.Close() }()

			risk := app.NewRiskService(st.repo, st.repo,
				app.WithPublisher(publisher),
				app.WithLogger(logger),
			)
			if _, err := app.NewPatientService(st.repo).Get(cmd.Context(), id); err != nil {
				return err
			}
			a, err := risk.Reassess(cmd.Context(), id)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a)
		},
	}
	cmd.Flags().StringVar(&patient, "patient", "", "patient id")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage clinician accounts",
	}

	var username, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a password account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.close()

			u, err := app.NewAuthService(st.repo, st.sessions).CreateUser(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %q (id %d).\n", u.Username, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "login name")
	create.Flags().StringVar(&password, "password", "", "password, at least 8 characters")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)

	return cmd
}

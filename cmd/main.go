package main

import (
	"IDMS/config"
	"IDMS/database"
	"IDMS/models"
	"IDMS/repositories"
	"IDMS/services"
	"IDMS/utils"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "idms",
		Short:         "Symptom checker and diagnosis API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedDiseasesCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig reads the configuration and sets up the global logger from it.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)
	return cfg, nil
}

func setupLogger(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	log.Logger = logger
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.InitDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func seedDiseasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-diseases",
		Short: "Insert or refresh the malaria and pneumonia disease profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.InitDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			store, closeCache, err := newCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			diseases, err := services.NewDiseaseService(repositories.NewDiseaseRepository(db, store)).InitializeDefaults(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range diseases {
				log.Info().Uint("id", d.ID).Str("name", d.Name).Msg("disease profile seeded")
			}
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Validate(role, validation.Required, validation.In(models.Roles...)); err != nil {
				return fmt.Errorf("role: %w", err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tokens, err := utils.NewTokenManager(cfg.SymmetricKey)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateAccessToken(userID, email, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id issued by the identity provider")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&role, "role", models.RolePatient, "One of Admin, Doctor, Nurse, Patient")
	cmd.Flags().DurationVar(&ttl, "ttl", utils.AccessTokenExpiry, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func init() {
	// Logger used before configuration is loaded.
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"cinepulse-recommendation-service/internal/config"
	"cinepulse-recommendation-service/internal/database"
	"cinepulse-recommendation-service/internal/repository"
	"cinepulse-recommendation-service/internal/research"
	"cinepulse-recommendation-service/internal/service"
	"cinepulse-recommendation-service/internal/tmdb"
)

var (
	verbose bool
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "catalogctl",
	Short:        "Manage the CinePulse movie catalog",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		level := cfg.SlogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	seedCmd.Flags().StringP("file", "f", "data/catalog.yaml", "Path to the catalog YAML file")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(syncRuntimesCmd)
	rootCmd.AddCommand(researchCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load catalog entries from a YAML file, skipping titles already present",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		movies, err := loadCatalogFile(path)
		if err != nil {
			return err
		}

		return withMovieService(cmd.Context(), func(ctx context.Context, svc *service.MovieService) error {
			result, err := svc.Seed(ctx, movies)
			if err != nil {
				return err
			}
			fmt.Printf("Added: %d\nSkipped: %d\nInvalid: %d\n", result.Added, result.Skipped, result.Invalid)
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every catalog entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMovieService(cmd.Context(), func(ctx context.Context, svc *service.MovieService) error {
			n, err := svc.Reset(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d entries\n", n)
			return nil
		})
	},
}

var syncRuntimesCmd = &cobra.Command{
	Use:   "sync-runtimes",
	Short: "Fill missing runtimes from TMDB",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)
		if !client.Configured() {
			return fmt.Errorf("TMDB_API_KEY is not set")
		}
		limiter := rate.NewLimiter(rate.Limit(4), 1)

		return withMovieService(cmd.Context(), func(ctx context.Context, svc *service.MovieService) error {
			n, err := svc.SyncRuntimes(ctx, client, limiter)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d runtimes\n", n)
			return nil
		})
	},
}

var researchCmd = &cobra.Command{
	Use:   "research <title>",
	Short: "Research a title and add it to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMovieService(cmd.Context(), func(ctx context.Context, svc *service.MovieService) error {
			r := research.NewDefault(research.Settings{
				SerpAPIKey:     cfg.Research.SerpAPIKey,
				WikiBaseURL:    cfg.Research.WikiBaseURL,
				RequestsPerSec: cfg.Research.RequestsPerSec,
			}, tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL), svc)

			m, err := r.Discover(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Added %q (id %d): tone=%s pace=%s ending=%s\n", m.Title, m.ID, m.Tone, m.Pace, m.EndingType)
			return nil
		})
	},
}

// withMovieService opens the database, runs fn and closes it again. Redis is
// used only to invalidate cached queries and may be absent.
func withMovieService(parent context.Context, fn func(context.Context, *service.MovieService) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to PostgreSQL: %w", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, cached queries will expire on their own", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	svc := service.NewMovieService(repository.NewMovieRepository(db), rdb, cfg.CacheTTL)
	return fn(ctx, svc)
}

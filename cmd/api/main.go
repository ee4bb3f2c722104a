package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/library-tracker/cmd/api/book"
	"github.com/library-tracker/cmd/api/database"
	bookhttp "github.com/library-tracker/cmd/api/http"
	"github.com/library-tracker/cmd/api/inmemory"
	"github.com/library-tracker/cmd/api/notifications"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "library",
		Short:         "Personal library tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := stderrLogger(cfg)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (optional, environment variables take precedence)")

	rootCmd.AddCommand(a.newServeCmd(), a.newMigrateCmd(), a.newSeedCmd())
	return rootCmd
}

func (a *app) newServeCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the sample library before serving")
	return cmd
}

func (a *app) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage != storagePostgres {
				return fmt.Errorf("migrate needs %s storage, got %s", storagePostgres, a.cfg.Storage)
			}
			store, closeDB, err := a.openPostgres(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()
			return a.migrate(store)
		},
	}
}

func (a *app) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample genres and books into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Storage != storagePostgres {
				return fmt.Errorf("seed needs %s storage, use serve --seed with %s storage", storagePostgres, storageMemory)
			}
			store, closeDB, err := a.openPostgres(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()
			return a.seedPostgres(cmd.Context(), store)
		},
	}
}

func (a *app) serve(ctx context.Context, seed bool) error {
	repo, closeRepo, err := a.openRepository(ctx, seed)
	if err != nil {
		return err
	}
	defer closeRepo()

	var ntfy book.Notifier
	if a.cfg.NotificationsEnabled {
		ntfy = notifications.NewNtfy(true, a.cfg.NotificationsBaseURL, &http.Client{}, a.logger)
	}
	bookService := book.NewService(repo, ntfy, a.cfg.NotificationsTimeout, a.logger)
	bookHandler := bookhttp.NewBookHandler(bookService, a.cfg.RequestTimeout, a.logger)

	//create and init http server:
	server := bookhttp.NewServer(bookhttp.ServerConfig{
		Port:           a.cfg.Port,
		RateLimitRPS:   a.cfg.RateLimitRPS,
		RateLimitBurst: a.cfg.RateLimitBurst,
	}, bookHandler, a.logger)

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", server.Addr).Str("storage", a.cfg.Storage).Msg("http server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("unexpected http server error: %w", err)
		}
		close(serverErr)
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sc:
	case err := <-serverErr:
		return err
	}

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	a.logger.Info().Msg("graceful shutdown complete")
	return nil
}

/* Returns the configured storage engine. Postgres is migrated before use. */
func (a *app) openRepository(ctx context.Context, seed bool) (book.Repository, func(), error) {
	if a.cfg.Storage == storageMemory {
		store, err := inmemory.NewInMemoryStore()
		if err != nil {
			return nil, nil, fmt.Errorf("creating in memory store: %w", err)
		}
		if seed {
			if err := seedLibrary(ctx, store, a.logger); err != nil {
				return nil, nil, err
			}
		}
		return store, func() {}, nil
	}

	store, closeDB, err := a.openPostgres(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := a.migrate(store); err != nil {
		closeDB()
		return nil, nil, err
	}
	if seed {
		if err := a.seedPostgres(ctx, store); err != nil {
			closeDB()
			return nil, nil, err
		}
	}
	return store, closeDB, nil
}

func (a *app) openPostgres(ctx context.Context) (*database.Store, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbObject, err := database.ConnectDb(connectCtx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting with db: %w", err)
	}
	return database.NewStore(dbObject), func() { dbObject.Close() }, nil
}

func (a *app) migrate(store *database.Store) error {
	err := database.MigrationUp(store, a.cfg.MigrationsPath)
	if errors.Is(err, migrate.ErrNoChange) {
		a.logger.Info().Msg("database schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	a.logger.Info().Str("path", a.cfg.MigrationsPath).Msg("migrations applied")
	return nil
}

/* Seeds inside one transaction so a failure leaves the database as it was. */
func (a *app) seedPostgres(ctx context.Context, store *database.Store) error {
	txStore, tx, err := store.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seeding: %w", err)
	}

	if err := seedLibrary(ctx, txStore, a.logger); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			a.logger.Error().Err(rbErr).Msg("rolling back seed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seeding, committing: %w", err)
	}
	return nil
}

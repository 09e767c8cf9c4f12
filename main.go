package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/internhill/jobboard/internal/application"
	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/config"
	"github.com/internhill/jobboard/internal/database"
	"github.com/internhill/jobboard/internal/handler"
	"github.com/internhill/jobboard/internal/job"
	"github.com/internhill/jobboard/internal/server"
	"github.com/internhill/jobboard/internal/storage"
	"github.com/internhill/jobboard/internal/template"
	"github.com/internhill/jobboard/internal/user"

	"github.com/alecthomas/kong"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type CLI struct {
	Serve   ServeCmd   `cmd:"" default:"withargs" help:"Run the API server."`
	Migrate MigrateCmd `cmd:"" help:"Create missing tables and indexes."`
	Reindex ReindexCmd `cmd:"" help:"Rebuild the application list stored on every job."`
}

type runContext struct {
	cfg config.Config
	log zerolog.Logger
}

type ServeCmd struct {
	Migrate bool `help:"Run migrations before serving."`
}

func (c *ServeCmd) Run(rc *runContext) error {
	conn, err := database.GetDbConn(rc.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("unable to connect to postgres: %w", err)
	}
	defer database.CloseDbConn(conn)
	if c.Migrate {
		if err := database.Migrate(context.Background(), conn); err != nil {
			return err
		}
	}

	var files storage.Store
	switch rc.cfg.ResumeStorage {
	case config.ResumeStorageDatabase:
		files = storage.NewDBStore(conn)
	default:
		files, err = storage.NewDiskStore(rc.cfg.UploadDir)
		if err != nil {
			return err
		}
	}

	tmpl := template.NewTemplate()
	userRepo := user.NewRepository(conn)
	jobRepo := job.NewRepository(conn)
	applicationRepo := application.NewRepository(conn)

	tokens := auth.NewTokenService(rc.cfg.JwtSigningKey, rc.cfg.TokenTTL)
	authSvc := auth.NewService(userRepo, auth.NewBcryptHasher(), tokens)
	jobSvc := job.NewService(jobRepo, userRepo, tmpl)
	applicationSvc := application.NewService(
		applicationRepo,
		jobRepo,
		files,
		rc.log.With().Str("component", "application").Logger(),
		application.Options{StrictOwnership: rc.cfg.StrictOwnership},
	)

	svr := server.NewServer(rc.cfg, mux.NewRouter(), rc.log)
	handler.RegisterRoutes(svr, tokens, authSvc, jobSvc, applicationSvc)

	rc.log.Info().
		Str("resume_storage", rc.cfg.ResumeStorage).
		Bool("strict_ownership", rc.cfg.StrictOwnership).
		Msgf("listening on port %s", rc.cfg.Port)
	return svr.Run()
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(rc *runContext) error {
	conn, err := database.GetDbConn(rc.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("unable to connect to postgres: %w", err)
	}
	defer database.CloseDbConn(conn)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, conn); err != nil {
		return err
	}
	rc.log.Info().Msg("migrations applied")
	return nil
}

type ReindexCmd struct{}

func (c *ReindexCmd) Run(rc *runContext) error {
	conn, err := database.GetDbConn(rc.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("unable to connect to postgres: %w", err)
	}
	defer database.CloseDbConn(conn)
	n, err := job.NewRepository(conn).ReindexApplications(context.Background())
	if err != nil {
		return err
	}
	rc.log.Info().Int64("jobs", n).Msg("reindexed job applications")
	return nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Logger()
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("jobboard"),
		kong.Description("Internhill job board API."),
		kong.UsageOnError(),
	)

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to load config: %+v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	if err := kctx.Run(&runContext{cfg: cfg, log: logger}); err != nil {
		logger.Fatal().Err(err).Msgf("%s failed", kctx.Command())
	}
}

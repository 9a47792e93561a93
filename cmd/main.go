package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodgram-backend/cmd/config"
	migration "foodgram-backend/cmd/database/migrate"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/logging"
	"foodgram-backend/pkg/ingredient"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const usage = `usage: foodgram <command> [args]

commands:
  serve                     run the HTTP API (default)
  migrate                   create or update database tables
  load-ingredients [path]   import ingredients from a JSON fixture
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	utils.LoadConfig()
	logging.Init(logging.Config{
		Level:  utils.GetConfig("LOG_LEVEL"),
		Format: utils.GetConfig("LOG_FORMAT"),
	})

	command := flag.Arg(0)
	if command == "" {
		command = "serve"
	}

	var run func(db *gorm.DB) error
	switch command {
	case "serve":
		run = serve
	case "migrate":
		run = migration.Migrate
	case "load-ingredients":
		run = func(db *gorm.DB) error { return loadIngredients(db, flag.Arg(1)) }
	default:
		flag.Usage()
		os.Exit(2)
	}

	db, err := config.ConnectDB()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := run(db); err != nil {
		logging.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

func serve(db *gorm.DB) error {
	if err := migration.Migrate(db); err != nil {
		return err
	}

	app, err := config.NewApp(db)
	if err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return listenAndWait(app, fmt.Sprintf(":%s", utils.GetConfig("APP_PORT")), quit)
}

// listenAndWait serves until quit fires, then shuts down gracefully. A Listen
// failure returns immediately instead of waiting for a signal.
func listenAndWait(app *fiber.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("starting server")
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-quit:
	}

	logging.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(ctx)
}

func loadIngredients(db *gorm.DB, path string) error {
	if path == "" {
		path = utils.GetConfig("INGREDIENTS_FIXTURE")
	}
	if err := migration.Migrate(db); err != nil {
		return err
	}

	utils.InitValidator()
	service := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db), utils.Validate)
	res, err := service.LoadFixture(context.Background(), path)
	if err != nil {
		return err
	}

	logging.Info().
		Str("path", path).
		Int("total", res.Total).
		Int("created", res.Created).
		Msg("ingredients loaded")
	return nil
}

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"foodgram-backend/domain"
	"foodgram-backend/internal/api/handlers"
	"foodgram-backend/internal/api/presenters"
	"foodgram-backend/internal/api/routes"
	"foodgram-backend/internal/middleware"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/logging"
	"foodgram-backend/internal/utils/mailing"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/recipe"
	"foodgram-backend/pkg/subscription"
	"foodgram-backend/pkg/user"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// errorHandler renders errors that escape handlers (unknown routes, panics,
// limiter rejections) in the same {"detail": ...} shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		status = e.Code
	}
	return presenters.ErrorResponse(c, status, domain.MessageInternalServerError, err)
}

func accessLogOutput() (io.Writer, error) {
	path := utils.GetConfig("ACCESS_LOG_FILE")
	if path == "" || path == "-" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	return file, nil
}

func newStorage() (storage.Storage, error) {
	if utils.GetConfig("MEDIA_STORAGE") == "s3" {
		return storage.NewAwsS3()
	}
	return storage.NewLocalStorageFromConfig(), nil
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	jwtService, err := jwt.NewJWTService()
	if err != nil {
		return nil, err
	}

	utils.InitValidator()
	app := fiber.New(fiber.Config{
		AppName:           "foodgram",
		EnablePrintRoutes: utils.IsDevelopment(),
		JSONEncoder:       json.Marshal,
		JSONDecoder:       json.Unmarshal,
		ErrorHandler:      errorHandler,
		BodyLimit:         10 * 1024 * 1024,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up request tracing, logging and limiter
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middlewares.RequestContext())

	output, err := accessLogOutput()
	if err != nil {
		return nil, err
	}
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     output,
	}))
	app.Use(middlewares.Metrics())
	app.Use(middlewares.CORSMiddleware())

	if limit := utils.GetConfigInt("RATE_LIMIT_MAX", 20); limit > 0 {
		window := utils.GetConfigInt("RATE_LIMIT_WINDOW_SECONDS", 1)
		app.Use(limiter.New(limiter.Config{
			Max:        limit,
			Expiration: time.Duration(window) * time.Second,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/metrics"
			},
		}))
	}

	// utils
	store, err := newStorage()
	if err != nil {
		return nil, err
	}
	if utils.GetConfig("MEDIA_STORAGE") != "s3" {
		app.Static(utils.GetConfig("MEDIA_URL"), utils.GetConfig("MEDIA_ROOT"))
	}
	mailer := mailing.NewMailer(mailing.LoadMailConfig())
	appURL := utils.GetConfig("APP_URL")

	// Repository
	userRepository := user.NewUserRepository(db)
	ingredientRepository := ingredient.NewIngredientRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	subscriptionRepository := subscription.NewSubscriptionRepository(db)

	// Service
	userService := user.NewUserService(userRepository, subscriptionRepository, jwtService, store, mailer, appURL)
	ingredientService := ingredient.NewIngredientService(ingredientRepository, validator)
	recipeService := recipe.NewRecipeService(recipeRepository, ingredientRepository, subscriptionRepository, store, appURL)
	subscriptionService := subscription.NewSubscriptionService(subscriptionRepository, userRepository, recipeService)

	// Handler
	authHandler := handlers.NewAuthHandler(userService, validator)
	userHandler := handlers.NewUserHandler(userService, subscriptionService, validator)
	ingredientHandler := handlers.NewIngredientHandler(ingredientService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// routes
	routesConfig := routes.Config{
		App:               app,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		IngredientHandler: ingredientHandler,
		RecipeHandler:     recipeHandler,
		Middleware:        middlewares,
		JWTService:        jwtService,
	}
	routesConfig.Setup()

	logging.Info().Str("media_storage", utils.GetConfig("MEDIA_STORAGE")).Msg("application wired")
	return app, nil
}

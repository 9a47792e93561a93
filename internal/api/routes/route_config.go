package routes

import (
	"foodgram-backend/internal/api/handlers"
	"foodgram-backend/internal/middleware"
	"foodgram-backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App               *fiber.App
	AuthHandler       handlers.AuthHandler
	UserHandler       handlers.UserHandler
	IngredientHandler handlers.IngredientHandler
	RecipeHandler     handlers.RecipeHandler
	Middleware        middleware.Middleware
	JWTService        jwt.JWTService
}

func (c *Config) Setup() {
	c.Auth()
	c.User()
	c.Ingredients()
	c.Recipes()
	c.GuestRoute()
}

func (c *Config) auth() fiber.Handler {
	return c.Middleware.AuthMiddleware(c.JWTService)
}

func (c *Config) optionalAuth() fiber.Handler {
	return c.Middleware.OptionalAuthMiddleware(c.JWTService)
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/auth/token")
	{
		auth.Post("/login/", c.AuthHandler.Login)
		auth.Post("/logout/", c.auth(), c.AuthHandler.Logout)
	}
}

func (c *Config) User() {
	user := c.App.Group("/api/users")
	// static paths go before /:id
	{
		user.Post("/", c.UserHandler.Register)
		user.Get("/", c.optionalAuth(), c.UserHandler.GetUsers)
		user.Get("/me/", c.auth(), c.UserHandler.Me)
		user.Put("/me/avatar/", c.auth(), c.UserHandler.UpdateAvatar)
		user.Delete("/me/avatar/", c.auth(), c.UserHandler.DeleteAvatar)
		user.Post("/set_password/", c.auth(), c.UserHandler.SetPassword)
		user.Post("/reset_password/", c.UserHandler.ForgotPassword)
		user.Post("/reset_password_confirm/", c.UserHandler.ResetPassword)
		user.Get("/subscriptions/", c.auth(), c.UserHandler.GetSubscriptions)
		user.Get("/:id<int>/", c.optionalAuth(), c.UserHandler.GetUser)
		user.Post("/:id<int>/subscribe/", c.auth(), c.UserHandler.Subscribe)
		user.Delete("/:id<int>/subscribe/", c.auth(), c.UserHandler.Unsubscribe)
	}
}

func (c *Config) Ingredients() {
	ingredients := c.App.Group("/api/ingredients")
	{
		ingredients.Get("/", c.IngredientHandler.GetIngredients)
		ingredients.Get("/:id<int>/", c.IngredientHandler.GetIngredient)
	}
}

func (c *Config) Recipes() {
	recipes := c.App.Group("/api/recipes")
	{
		recipes.Get("/", c.optionalAuth(), c.RecipeHandler.GetRecipes)
		recipes.Post("/", c.auth(), c.RecipeHandler.CreateRecipe)
		recipes.Get("/download_shopping_cart/", c.auth(), c.RecipeHandler.DownloadShoppingCart)
		recipes.Get("/:id<int>/", c.optionalAuth(), c.RecipeHandler.GetRecipe)
		recipes.Patch("/:id<int>/", c.auth(), c.RecipeHandler.UpdateRecipe)
		recipes.Delete("/:id<int>/", c.auth(), c.RecipeHandler.DeleteRecipe)
		recipes.Get("/:id<int>/get-link/", c.RecipeHandler.GetShortLink)
		recipes.Post("/:id<int>/favorite/", c.auth(), c.RecipeHandler.AddFavorite)
		recipes.Delete("/:id<int>/favorite/", c.auth(), c.RecipeHandler.RemoveFavorite)
		recipes.Post("/:id<int>/shopping_cart/", c.auth(), c.RecipeHandler.AddToShoppingCart)
		recipes.Delete("/:id<int>/shopping_cart/", c.auth(), c.RecipeHandler.RemoveFromShoppingCart)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/s/:id<int>", c.RecipeHandler.RedirectShortLink)
}

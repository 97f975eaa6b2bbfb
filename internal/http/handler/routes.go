package handler

import (
	"github.com/gofiber/fiber/v2"

	"gifstore/internal/http/middleware"
	"gifstore/internal/service"
)

// Services bundles what the routes call into.
type Services struct {
	Items service.ItemService
	Users service.UserService
	// Tokens verifies bearer tokens.
	Tokens middleware.TokenParser
	// DB is pinged by /health; nil when running on the in-memory driver.
	DB Pinger
}

// RegisterRoutes attaches the health and API routes to app.
// Authentication is optional at the group level; routes that need a user add
// RequireIdentity, the rest apply the read policy themselves.
func RegisterRoutes(app *fiber.App, s Services) {
	app.Get("/health", HealthCheck(s.DB))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api", middleware.Authenticate(s.Tokens))
	auth := middleware.RequireIdentity()

	users := api.Group("/users")
	users.Post("/register", RegisterUser(s.Users))
	users.Post("/login", LoginUser(s.Users))
	users.Put("/", auth, UpdateFullname(s.Users))
	users.Put("/password", auth, UpdatePassword(s.Users))

	items := api.Group("/items")
	items.Get("/", auth, ListItems(s.Items))
	items.Post("/", auth, UploadItem(s.Items))
	items.Get("/search", auth, SearchItems(s.Items))
	items.Get("/files/:filename", GetItemFile(s.Items))
	items.Post("/tag/:id", auth, TagItem(s.Items))
	items.Delete("/tag/:id", auth, UntagItem(s.Items))
	items.Put("/share/:id", auth, ShareItem(s.Items))
	items.Get("/:id", GetItem(s.Items))
	items.Put("/:id", auth, RenameItem(s.Items))
	items.Delete("/:id", auth, DeleteItem(s.Items))
}

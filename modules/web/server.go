package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/iineineno03k/todo-project/config"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

// newViewEngine loads the embedded templates.
func newViewEngine() *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}

// newApp builds the Fiber application with middleware and routes.
func newApp(cfg config.HTTPConfig, h *Handlers, health fiber.Handler, log types.Logger, requestLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Todo",
		DisableStartupMessage: true,
		Views:                 newViewEngine(),
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	if requestLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	app.Get("/health", health)
	app.Get("/", h.Index)

	todos := app.Group("/todos")
	todos.Get("/", h.List)
	todos.Post("/", h.Create)
	todos.Get("/new", h.New)
	todos.Get("/:id", h.Detail)
	todos.Post("/:id", h.Update)
	todos.Get("/:id/edit", h.Edit)
	todos.Get("/:id/delete", h.ConfirmDelete)
	todos.Post("/:id/delete", h.Delete)
	todos.Post("/:id/status", h.CycleStatus)

	return app
}

// errorHandler renders failures as HTML error pages.
func errorHandler(log types.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong."

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP error", "code", code, "method", c.Method(), "path", c.Path(), "error", err)
		}

		c.Status(code)
		if renderErr := c.Render("error", fiber.Map{
			"Title":   http.StatusText(code),
			"Code":    code,
			"Message": message,
		}, mainLayout); renderErr != nil {
			return c.SendString(message)
		}
		return nil
	}
}

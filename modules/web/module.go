// Package web serves the server-rendered HTML interface over Fiber.
package web

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/iineineno03k/todo-project/config"
	"github.com/iineineno03k/todo-project/modules/activity"
	"github.com/iineineno03k/todo-project/modules/todo"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis/v3"
	nanoid "github.com/jaevor/go-nanoid"
)

// sessionIDLength is the length of generated session identifiers.
const sessionIDLength = 32

// Module is the driving adapter that serves the HTML pages. It talks to
// the todo and activity modules through their ports.
type Module struct {
	app          *fiber.App
	cfg          config.HTTPConfig
	sessionCfg   config.SessionConfig
	feedLimit    int
	todoPort     todo.TodoPort
	activityPort activity.ActivityPort
	storage      fiber.Storage
	logger       types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new web module.
func NewModule(cfg config.HTTPConfig, sessionCfg config.SessionConfig, feedLimit int, logger types.Logger) *Module {
	return &Module{
		cfg:        cfg,
		sessionCfg: sessionCfg,
		feedLimit:  feedLimit,
		logger:     logger.WithModule("web"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "web"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"todo", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "todo":
		m.todoPort = todo.NewTodoAdapter(container)
	case "activity":
		m.activityPort = activity.NewActivityAdapter(container)
	}
}

// Start builds the Fiber app and starts listening.
func (m *Module) Start(_ context.Context) error {
	if m.todoPort == nil {
		return fmt.Errorf("todo dependency not set")
	}

	store, err := m.newSessionStore()
	if err != nil {
		return err
	}

	handlers := NewHandlers(m.todoPort, m.activityPort, store, m.feedLimit, m.logger)
	m.app = newApp(m.cfg, handlers, m.healthHandler, m.logger, true)

	// Catch immediate startup errors such as a port already in use.
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.cfg.Address); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.cfg.Address)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app != nil {
		if err := m.app.ShutdownWithContext(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	if m.storage != nil {
		if err := m.storage.Close(); err != nil {
			m.logger.Warn("Failed to close session storage", "error", err)
		}
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.app == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "server not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":     m.cfg.Address,
			"sessions": m.sessionBackend(),
		},
	}
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	status := m.Health(c.UserContext())
	code := fiber.StatusOK
	label := "healthy"
	if !status.Healthy {
		code = fiber.StatusServiceUnavailable
		label = "unhealthy"
	}
	return c.Status(code).JSON(fiber.Map{
		"status":  label,
		"message": status.Message,
		"details": status.Details,
	})
}

// newSessionStore returns a session store backed by Redis when configured
// and by process memory otherwise.
func (m *Module) newSessionStore() (store *session.Store, err error) {
	keyGen, err := nanoid.Standard(sessionIDLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create session id generator: %w", err)
	}

	cfg := session.Config{
		Expiration:     m.sessionCfg.Expiration,
		KeyLookup:      "cookie:todo_session",
		KeyGenerator:   keyGen,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	}

	if m.sessionCfg.RedisAddr != "" {
		// redis.New panics when the server cannot be reached.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("failed to connect session storage to Redis at %s: %v", m.sessionCfg.RedisAddr, r)
			}
		}()
		host, port := parseRedisAddr(m.sessionCfg.RedisAddr)
		m.storage = redis.New(redis.Config{
			Host:     host,
			Port:     port,
			PoolSize: 10,
		})
		cfg.Storage = m.storage
		m.logger.Info("Session storage connected", "redis_addr", m.sessionCfg.RedisAddr)
	}

	return session.New(cfg), nil
}

func (m *Module) sessionBackend() string {
	if m.storage != nil {
		return "redis"
	}
	return "memory"
}

// parseRedisAddr parses "host:port", falling back to 127.0.0.1:6379.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}

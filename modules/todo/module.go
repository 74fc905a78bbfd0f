// Package todo provides the task module: persistence, the status cycle,
// request-reply services and lifecycle events.
package todo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iineineno03k/todo-project/config"
	"github.com/iineineno03k/todo-project/events"
	"github.com/iineineno03k/todo-project/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module provides task management services via GORM.
type Module struct {
	cfg      config.DatabaseConfig
	db       *gorm.DB
	repo     *Repository
	service  *Service
	cache    cache.CacheService
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.UsePluginModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new todo module.
func NewModule(cfg config.DatabaseConfig, logger types.Logger) *Module {
	return &Module{
		cfg:    cfg,
		logger: logger.WithModule("todo"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "todo"
}

// SetPlugin receives the optional cache plugin.
func (m *Module) SetPlugin(alias string, plugin mono.PluginModule) {
	if alias != "cache" {
		return
	}
	if cachePlugin, ok := plugin.(*cache.PluginModule); ok {
		m.cache = cachePlugin.Port()
		m.logger.Info("Cache plugin injected")
	}
}

// SetEventBus is called by the framework to inject the event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskStatusChangedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
// Names are prefixed by the framework, so "create" becomes
// "services.todo.create".
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "cycle-status", json.Unmarshal, json.Marshal, m.cycleStatus,
	); err != nil {
		return fmt.Errorf("failed to register cycle-status service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", []string{"create", "get", "list", "update", "delete", "cycle-status"})
	return nil
}

// Start opens the database, runs migrations and builds the service.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Connecting to database", "driver", m.cfg.Driver)

	db, err := OpenDatabase(m.cfg)
	if err != nil {
		return err
	}
	m.db = db
	m.repo = NewRepository(db)

	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, events will not be published")
	}
	m.service = NewService(m.repo, m.cache, m.eventBus, m.logger)

	m.logger.Info("Module started", "cache", m.cache != nil)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	m.logger.Info("Database connection closed")
	return nil
}

// Health performs a health check on the todo module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.repo == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err := m.repo.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.cfg.Driver,
			"cache":  m.cache != nil,
		},
	}
}

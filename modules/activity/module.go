// Package activity records task lifecycle events into a bounded
// recent-activity feed.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/iineineno03k/todo-project/domain/todo"
	"github.com/iineineno03k/todo-project/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module consumes task events and serves the activity feed.
type Module struct {
	store  *Store
	logger types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
)

// NewModule creates a new activity module keeping limit entries.
func NewModule(limit int, logger types.Logger) *Module {
	return &Module{
		store:  NewStore(limit),
		logger: logger.WithModule("activity"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// RegisterEventConsumers registers handlers for task events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskStatusChangedV1, m.handleTaskStatusChanged, m); err != nil {
		return fmt.Errorf("failed to register TaskStatusChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskCreated.v1", "TaskUpdated.v1", "TaskStatusChanged.v1", "TaskDeleted.v1"})
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.store.Record(Entry{
		TaskID:  event.TaskID,
		Title:   event.Title,
		Kind:    KindCreated,
		Message: fmt.Sprintf("Created %q", event.Title),
		At:      event.CreatedAt,
	})
	m.logger.Debug("Recorded task creation", "taskID", event.TaskID)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.store.Record(Entry{
		TaskID:  event.TaskID,
		Title:   event.Title,
		Kind:    KindUpdated,
		Message: fmt.Sprintf("Updated %q", event.Title),
		At:      event.UpdatedAt,
	})
	return nil
}

func (m *Module) handleTaskStatusChanged(_ context.Context, event events.TaskStatusChangedEvent, _ *mono.Msg) error {
	from := domain.Status(event.From).Label()
	to := domain.Status(event.To).Label()
	m.store.Record(Entry{
		TaskID:  event.TaskID,
		Title:   event.Title,
		Kind:    KindStatusChanged,
		Message: fmt.Sprintf("Moved %q from %s to %s", event.Title, from, to),
		At:      event.ChangedAt,
	})
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.store.Record(Entry{
		TaskID:  event.TaskID,
		Title:   event.Title,
		Kind:    KindDeleted,
		Message: fmt.Sprintf("Deleted %q", event.Title),
		At:      event.DeletedAt,
	})
	return nil
}

// RegisterServices registers the recent service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent", json.Unmarshal, json.Marshal, m.recent,
	); err != nil {
		return fmt.Errorf("failed to register recent service: %w", err)
	}
	m.logger.Info("Registered activity services", "services", []string{"recent"})
	return nil
}

func (m *Module) recent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	return RecentResponse{Entries: m.store.Recent(req.Limit)}, nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped")
	return nil
}

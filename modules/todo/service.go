package todo

import (
	"context"
	"sync/atomic"
	"time"

	domain "github.com/iineineno03k/todo-project/domain/todo"
	"github.com/iineineno03k/todo-project/events"
	"github.com/iineineno03k/todo-project/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service implements task operations over the repository. The cache and
// the event bus are optional.
type Service struct {
	repo    *Repository
	cache   cache.CacheService
	bus     mono.EventBus
	logger  types.Logger
	sfGroup singleflight.Group
	now     func() time.Time

	// writes is bumped before every cache invalidation. A read that saw
	// a different value may hold a stale row and must not stay cached.
	writes atomic.Uint64
}

// NewService creates a new task service. c and bus may be nil.
func NewService(repo *Repository, c cache.CacheService, bus mono.EventBus, logger types.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		bus:    bus,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func cacheKeyByID(id string) string {
	return "task:" + id
}

// Create validates in and stores a new task.
func (s *Service) Create(ctx context.Context, in domain.Input) (*domain.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	task := &domain.Task{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(task)

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(func() error {
		return events.TaskCreatedV1.Publish(s.bus, events.TaskCreatedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			Status:    string(task.Status),
			Priority:  task.Priority,
			CreatedAt: task.CreatedAt,
		}, nil)
	}, "TaskCreated", task.ID)

	s.logger.Debug("Task created", "id", task.ID, "priority", task.Priority)
	return task, nil
}

// Get returns the task with the given id, reading through the cache when
// one is configured. Concurrent misses for the same id share one query.
func (s *Service) Get(ctx context.Context, id string) (*domain.Task, error) {
	if s.cache == nil {
		return s.repo.FindByID(ctx, id)
	}

	key := cacheKeyByID(id)
	var cached domain.Task
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Cache read failed, falling back to database", "id", id, "error", err)
	}
	if found {
		return &cached, nil
	}

	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		// The flight is shared, so one caller's cancellation must not
		// fail the others.
		ctx := context.WithoutCancel(ctx)
		gen := s.writes.Load()
		task, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.writes.Load() != gen {
			return task, nil
		}
		if err := s.cache.Set(ctx, key, task); err != nil {
			s.logger.Warn("Failed to cache task", "id", id, "error", err)
			return task, nil
		}
		if s.writes.Load() != gen {
			s.dropCached(ctx, id)
		}
		return task, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not alias one struct.
	task := *val.(*domain.Task)
	return &task, nil
}

// List returns the tasks matching filter in display order.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		verr := &domain.ValidationError{}
		verr.Add("status", "Select a valid choice.")
		return nil, verr
	}
	return s.repo.List(ctx, filter)
}

// Update replaces the editable fields of a task. CreatedAt is preserved.
func (s *Service) Update(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	in.Apply(task)
	task.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	s.publish(func() error {
		return events.TaskUpdatedV1.Publish(s.bus, events.TaskUpdatedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			UpdatedAt: task.UpdatedAt,
		}, nil)
	}, "TaskUpdated", task.ID)

	return task, nil
}

// Delete removes a task permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.publish(func() error {
		return events.TaskDeletedV1.Publish(s.bus, events.TaskDeletedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			DeletedAt: s.now(),
		}, nil)
	}, "TaskDeleted", id)

	return nil
}

// CycleStatus advances a task to the next status. Only status and
// updated_at are written. An unknown id fails with ErrNotFound before
// anything is written.
func (s *Service) CycleStatus(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := task.Status
	task.Status = from.Next()
	task.UpdatedAt = s.now()

	if err := s.repo.UpdateStatus(ctx, id, task.Status, task.UpdatedAt); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	s.publish(func() error {
		return events.TaskStatusChangedV1.Publish(s.bus, events.TaskStatusChangedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			From:      string(from),
			To:        string(task.Status),
			ChangedAt: task.UpdatedAt,
		}, nil)
	}, "TaskStatusChanged", id)

	s.logger.Debug("Task status changed", "id", id, "from", from, "to", task.Status)
	return task, nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	s.writes.Add(1)
	s.dropCached(ctx, id)
}

func (s *Service) dropCached(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, cacheKeyByID(id)); err != nil {
		s.logger.Warn("Failed to invalidate cached task", "id", id, "error", err)
	}
}

// publish emits an event when a bus is set. Failures are logged only.
func (s *Service) publish(emit func() error, event, id string) {
	if s.bus == nil {
		return
	}
	if err := emit(); err != nil {
		s.logger.Warn("Failed to publish event", "event", event, "id", id, "error", err)
	}
}

package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/tgienger/cadence/internal/models"
)

// Store is the task persistence the controller writes through.
type Store interface {
	// CreateTask assigns an id, persists t and returns the stored record.
	CreateTask(ctx context.Context, t models.Task) (*models.Task, error)
	// UpdateTask persists the full record of an existing task.
	UpdateTask(ctx context.Context, t models.Task) error
}

// Transactor is implemented by stores that can apply several writes
// atomically. fn receives a Store bound to the transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// Clock supplies the completion instant
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// FixedClock is a deterministic Clock for tests and previews.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

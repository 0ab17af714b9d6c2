package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tgienger/cadence/internal/models"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory Store with failure injection.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	tasks      map[int64]models.Task
	failCreate bool
	failUpdate bool
	creates    int
	updates    int
}

func newMemStore() *memStore {
	return &memStore{tasks: map[int64]models.Task{}}
}

func (s *memStore) CreateTask(_ context.Context, t models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.failCreate {
		return nil, errStoreDown
	}
	s.nextID++
	t.ID = s.nextID
	s.tasks[t.ID] = t.Clone()
	out := t.Clone()
	return &out, nil
}

func (s *memStore) UpdateTask(_ context.Context, t models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.failUpdate {
		return errStoreDown
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

func (s *memStore) put(t models.Task) models.Task {
	created, _ := s.CreateTask(context.Background(), t)
	s.creates = 0
	return *created
}

func (s *memStore) get(id int64) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id].Clone()
}

func (s *memStore) all() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// txStore stages writes and applies them only when fn succeeds.
type txStore struct {
	*memStore
}

func (s txStore) InTx(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	snapshot := make(map[int64]models.Task, len(s.tasks))
	for id, t := range s.tasks {
		snapshot[id] = t
	}
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(s.memStore); err != nil {
		s.mu.Lock()
		s.tasks = snapshot
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

package store

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ErrNotFound is returned when a task id is unknown to the store.
var ErrNotFound = eris.New("store: task not found")

// ErrDuplicate is returned when creating a task whose id already exists.
var ErrDuplicate = eris.New("store: task already exists")

// MemoryStore keeps task records in a process-wide map. Records live until
// the process exits; there is no eviction.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*model.Task
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*model.Task)}
}

// Create registers a new task record.
func (s *MemoryStore) Create(task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return eris.Wrapf(ErrDuplicate, "id %s", task.ID)
	}

	now := time.Now().UTC()
	cp := task.Clone()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.tasks[task.ID] = cp
	return nil
}

// Get returns a copy of the task record.
func (s *MemoryStore) Get(id string) (*model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return task.Clone(), true
}

// Update applies mutate to the stored record under the write lock.
func (s *MemoryStore) Update(id string, mutate func(*model.Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return eris.Wrapf(ErrNotFound, "id %s", id)
	}

	mutate(task)
	task.UpdatedAt = time.Now().UTC()
	return nil
}

// Len reports the number of stored tasks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

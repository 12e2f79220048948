package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	err := s.Create(&model.Task{ID: "t1", Status: model.TaskStatusPending, Phone: "+441234567890"})
	require.NoError(t, err)

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, model.TaskStatusPending, got.Status)
	assert.Equal(t, "+441234567890", got.Phone)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	require.NoError(t, s.Create(&model.Task{ID: "t1"}))
	err := s.Create(&model.Task{ID: "t1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestMemoryStore_Update(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	require.NoError(t, s.Create(&model.Task{ID: "t1", Status: model.TaskStatusPending}))

	err := s.Update("t1", func(task *model.Task) {
		task.Status = model.TaskStatusSearching
	})
	require.NoError(t, err)

	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, model.TaskStatusSearching, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestMemoryStore_UpdateUnknown(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	err := s.Update("missing", func(task *model.Task) {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	require.NoError(t, s.Create(&model.Task{
		ID:      "t1",
		Results: []model.Lead{{CompanyName: "Acme Ltd", Email: "a@acme.co.uk"}},
	}))

	got, ok := s.Get("t1")
	require.True(t, ok)
	got.Results[0].Email = "mutated@example.com"
	got.Status = model.TaskStatusFailed

	again, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "a@acme.co.uk", again.Results[0].Email)
	assert.NotEqual(t, model.TaskStatusFailed, again.Status)
}

func TestMemoryStore_TerminalRecordIsStable(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	require.NoError(t, s.Create(&model.Task{ID: "t1"}))
	require.NoError(t, s.Update("t1", func(task *model.Task) {
		task.Status = model.TaskStatusLeadsFound
		task.Results = []model.Lead{{CompanyName: "Acme Ltd", Email: "a@acme.co.uk"}}
	}))

	first, ok := s.Get("t1")
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		next, ok := s.Get("t1")
		require.True(t, ok)
		assert.Equal(t, first, next)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("task-%d", n)
			if err := s.Create(&model.Task{ID: id, Status: model.TaskStatusPending}); err != nil {
				t.Error(err)
				return
			}
			for j := 0; j < 20; j++ {
				_ = s.Update(id, func(task *model.Task) {
					task.Results = append(task.Results, model.Lead{Email: "x@example.com"})
				})
				_, _ = s.Get(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	got, ok := s.Get("task-7")
	require.True(t, ok)
	assert.Len(t, got.Results, 20)
}

// Package store holds task records for the lifetime of the process.
package store

import (
	"github.com/sells-group/leadgen-cli/internal/model"
)

// Store is the task-record container shared between the endpoint layer and
// the pipeline workers. Implementations must be safe for concurrent use;
// each task id has exactly one writing worker, so per-record locking is not
// part of the contract.
type Store interface {
	// Create registers a new task record. It fails if the id already exists.
	Create(task *model.Task) error

	// Get returns a copy of the task, or false when the id is unknown.
	// Callers may retain and read the copy freely.
	Get(id string) (*model.Task, bool)

	// Update applies mutate to the stored record under the store's lock and
	// bumps UpdatedAt. It fails if the id is unknown.
	Update(id string, mutate func(*model.Task)) error
}

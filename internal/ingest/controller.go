package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/dom/leaderboard-dashboard/internal/domain"
)

var ErrBusy = errors.New("an upload is already in progress")

// Inserter stores a batch of records in one call.
type Inserter interface {
	InsertEntries(ctx context.Context, records []domain.EntryFields) (int, error)
}

type Result struct {
	Inserted int `json:"inserted"`
}

// Controller runs uploads one at a time against an Inserter.
type Controller struct {
	store    Inserter
	onChange func()

	mu       sync.Mutex
	busy     bool
	detached bool
}

func NewController(store Inserter, onChange func()) *Controller {
	if onChange == nil {
		onChange = func() {}
	}
	return &Controller{store: store, onChange: onChange}
}

// Ingest parses the file and inserts every record in one batch. A file
// with no records is accepted without touching the store.
func (c *Controller) Ingest(ctx context.Context, filename string, data []byte) (Result, error) {
	records, err := Parse(filename, data)
	if err != nil {
		return Result{}, err
	}
	if len(records) == 0 {
		return Result{}, nil
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Result{}, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	n, err := c.store.InsertEntries(ctx, records)

	c.mu.Lock()
	c.busy = false
	detached := c.detached
	c.mu.Unlock()

	if err != nil {
		return Result{}, err
	}
	if !detached {
		c.onChange()
	}
	return Result{Inserted: n}, nil
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

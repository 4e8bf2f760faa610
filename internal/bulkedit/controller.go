package bulkedit

import (
	"context"
	"errors"
	"sync"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrConfirmationRequired = errors.New("bulk delete must be confirmed")
	ErrBusy                 = errors.New("another change is still in progress")
	ErrNothingSelected      = errors.New("no entries selected")
	ErrNotEditing           = errors.New("no entry is being edited")
)

// Store is the write side of the data source the controller mutates.
type Store interface {
	UpdateEntry(ctx context.Context, id uuid.UUID, fields domain.EntryFields) error
	DeleteEntries(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// Controller owns selection and edit state over one displayed page of
// entries. It never changes displayed data itself: after a successful write
// it calls onChange and waits for the owner to refetch and SetVisible.
type Controller struct {
	store    Store
	onChange func()

	mu       sync.Mutex
	visible  []uuid.UUID
	selected map[uuid.UUID]struct{}
	edit     *Buffer
	busy     bool
	detached bool
}

func New(store Store, onChange func()) *Controller {
	if onChange == nil {
		onChange = func() {}
	}
	return &Controller{
		store:    store,
		onChange: onChange,
		selected: make(map[uuid.UUID]struct{}),
	}
}

// SetVisible replaces the displayed page. Selected ids and an open edit
// that are no longer displayed are dropped.
func (c *Controller) SetVisible(entries []*domain.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = make([]uuid.UUID, 0, len(entries))
	present := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		c.visible = append(c.visible, e.ID)
		present[e.ID] = true
	}
	for id := range c.selected {
		if !present[id] {
			delete(c.selected, id)
		}
	}
	if c.edit != nil && !present[c.edit.ID] {
		c.edit = nil
	}
}

// Select marks a displayed entry. It reports false for ids not on the page.
func (c *Controller) Select(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isVisible(id) {
		return false
	}
	c.selected[id] = struct{}{}
	return true
}

func (c *Controller) Deselect(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.selected, id)
}

// SelectAll selects exactly the displayed ids.
func (c *Controller) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[uuid.UUID]struct{}, len(c.visible))
	for _, id := range c.visible {
		c.selected[id] = struct{}{}
	}
}

func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[uuid.UUID]struct{})
}

func (c *Controller) IsSelected(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[id]
	return ok
}

// Selected returns the selected ids in display order.
func (c *Controller) Selected() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

func (c *Controller) selectedLocked() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(c.selected))
	for _, id := range c.visible {
		if _, ok := c.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// BeginEdit opens the edit buffer on entry, replacing any other open edit.
func (c *Controller) BeginEdit(entry *domain.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = newBuffer(entry)
}

// Editing returns a copy of the open edit buffer.
func (c *Controller) Editing() (Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return Buffer{}, false
	}
	return *c.edit, true
}

func (c *Controller) SetField(name, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.edit == nil {
		return ErrNotEditing
	}
	return c.edit.set(name, raw)
}

func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edit = nil
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Detach stops the controller from acting on results that arrive later.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detached = true
}

// CommitEdit validates the buffer and sends a single update. The buffer is
// kept on any failure so no input is lost.
func (c *Controller) CommitEdit(ctx context.Context) error {
	c.mu.Lock()
	if c.edit == nil {
		c.mu.Unlock()
		return ErrNotEditing
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	buf := *c.edit
	fields, err := buf.Fields()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.busy = true
	c.mu.Unlock()

	err = c.store.UpdateEntry(ctx, buf.ID, fields)

	if !c.finish(func() {
		if err == nil && c.edit != nil && c.edit.ID == buf.ID {
			c.edit = nil
		}
	}) {
		return err
	}
	if err == nil {
		c.onChange()
	}
	return err
}

// CommitBulkDelete deletes every selected id in one store call. confirmed
// must be true: it records that the user acknowledged the irreversible prompt.
func (c *Controller) CommitBulkDelete(ctx context.Context, confirmed bool) (int64, error) {
	if !confirmed {
		return 0, ErrConfirmationRequired
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return 0, ErrBusy
	}
	ids := c.selectedLocked()
	if len(ids) == 0 {
		c.mu.Unlock()
		return 0, ErrNothingSelected
	}
	c.busy = true
	c.mu.Unlock()

	n, err := c.store.DeleteEntries(ctx, ids)

	if !c.finish(func() {
		if err == nil {
			c.selected = make(map[uuid.UUID]struct{})
		}
	}) {
		return n, err
	}
	if err == nil {
		c.onChange()
	}
	return n, err
}

// finish clears the busy flag and applies update unless the controller was
// detached meanwhile. It reports whether the caller should signal.
func (c *Controller) finish(update func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.detached {
		return false
	}
	update()
	return true
}

func (c *Controller) isVisible(id uuid.UUID) bool {
	for _, v := range c.visible {
		if v == id {
			return true
		}
	}
	return false
}

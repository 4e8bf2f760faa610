package bulkedit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/bulkedit"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type update struct {
	id     uuid.UUID
	fields domain.EntryFields
}

type fakeStore struct {
	mu        sync.Mutex
	updates   []update
	deletes   [][]uuid.UUID
	updateErr error
	deleteErr error
	gate      chan struct{}
}

func (s *fakeStore) wait() {
	if s.gate != nil {
		<-s.gate
	}
}

func (s *fakeStore) UpdateEntry(_ context.Context, id uuid.UUID, fields domain.EntryFields) error {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update{id: id, fields: fields})
	return s.updateErr
}

func (s *fakeStore) DeleteEntries(_ context.Context, ids []uuid.UUID) (int64, error) {
	s.wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, ids)
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return int64(len(ids)), nil
}

func (s *fakeStore) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates), len(s.deletes)
}

func entries(n int) []*domain.Entry {
	out := make([]*domain.Entry, n)
	for i := range out {
		out[i] = &domain.Entry{
			ID:           uuid.New(),
			AISystem:     "system",
			Organization: "org",
			ARCAGI1:      domain.Float(float64(i)),
		}
	}
	return out
}

func ids(es []*domain.Entry) []uuid.UUID {
	out := make([]uuid.UUID, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func newController(store *fakeStore) (*bulkedit.Controller, *int) {
	signals := 0
	return bulkedit.New(store, func() { signals++ }), &signals
}

func TestSelection(t *testing.T) {
	c, _ := newController(&fakeStore{})
	page := entries(3)
	c.SetVisible(page)

	assert.True(t, c.Select(page[2].ID))
	assert.True(t, c.Select(page[0].ID))
	assert.False(t, c.Select(uuid.New()), "ids off the page cannot be selected")
	assert.Equal(t, []uuid.UUID{page[0].ID, page[2].ID}, c.Selected())

	c.Deselect(page[0].ID)
	assert.Equal(t, []uuid.UUID{page[2].ID}, c.Selected())

	c.SelectAll()
	assert.Equal(t, ids(page), c.Selected())

	c.ClearAll()
	assert.Empty(t, c.Selected())
}

func TestSetVisible_DropsVanishedSelection(t *testing.T) {
	c, _ := newController(&fakeStore{})
	page := entries(3)
	c.SetVisible(page)
	c.SelectAll()
	c.BeginEdit(page[1])

	c.SetVisible([]*domain.Entry{page[0], page[2]})

	assert.Equal(t, []uuid.UUID{page[0].ID, page[2].ID}, c.Selected())
	_, editing := c.Editing()
	assert.False(t, editing)
}

func TestCommitBulkDelete_DeletesExactlyVisibleAtSelection(t *testing.T) {
	store := &fakeStore{}
	c, signals := newController(store)
	page := entries(3)
	c.SetVisible(page)
	c.SelectAll()

	// the collection grows after selection
	grown := append(append([]*domain.Entry{}, page...), entries(2)...)
	c.SetVisible(grown)

	n, err := c.CommitBulkDelete(context.Background(), true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.Len(t, store.deletes, 1)
	assert.ElementsMatch(t, ids(page), store.deletes[0])
	assert.Empty(t, c.Selected())
	assert.Equal(t, 1, *signals)
}

func TestCommitBulkDelete_RequiresConfirmation(t *testing.T) {
	store := &fakeStore{}
	c, signals := newController(store)
	c.SetVisible(entries(2))
	c.SelectAll()

	_, err := c.CommitBulkDelete(context.Background(), false)
	assert.ErrorIs(t, err, bulkedit.ErrConfirmationRequired)

	_, deletes := store.calls()
	assert.Zero(t, deletes)
	assert.Len(t, c.Selected(), 2)
	assert.Zero(t, *signals)
}

func TestCommitBulkDelete_FailureKeepsSelection(t *testing.T) {
	boom := errors.New("store unavailable")
	store := &fakeStore{deleteErr: boom}
	c, signals := newController(store)
	page := entries(2)
	c.SetVisible(page)
	c.SelectAll()

	_, err := c.CommitBulkDelete(context.Background(), true)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ids(page), c.Selected())
	assert.Zero(t, *signals)
	assert.False(t, c.Busy())
}

func TestCommitBulkDelete_NothingSelected(t *testing.T) {
	store := &fakeStore{}
	c, _ := newController(store)
	c.SetVisible(entries(2))

	_, err := c.CommitBulkDelete(context.Background(), true)
	assert.ErrorIs(t, err, bulkedit.ErrNothingSelected)
	_, deletes := store.calls()
	assert.Zero(t, deletes)
}

func TestCommitEdit(t *testing.T) {
	tests := []struct {
		name      string
		set       map[string]string
		storeErr  error
		wantErr   error
		wantField string
		check     func(t *testing.T, got domain.EntryFields)
	}{
		{
			name: "empty numeric becomes null",
			set:  map[string]string{"arc_agi_1": "", "cost_per_task": "  "},
			check: func(t *testing.T, got domain.EntryFields) {
				assert.Nil(t, got.ARCAGI1)
				assert.Nil(t, got.CostPerTask)
			},
		},
		{
			name: "numbers parsed",
			set:  map[string]string{"arc_agi_2": "3.25", "code_paper_link": "https://arxiv.org/abs/1"},
			check: func(t *testing.T, got domain.EntryFields) {
				require.NotNil(t, got.ARCAGI2)
				assert.Equal(t, 3.25, *got.ARCAGI2)
				require.NotNil(t, got.CodePaperLink)
				assert.Equal(t, "https://arxiv.org/abs/1", *got.CodePaperLink)
			},
		},
		{
			name:      "unparsable number",
			set:       map[string]string{"arc_agi_1": "abc"},
			wantErr:   domain.ErrValidation,
			wantField: "arc_agi_1",
		},
		{
			name:      "NaN rejected",
			set:       map[string]string{"arc_agi_2": "NaN"},
			wantErr:   domain.ErrValidation,
			wantField: "arc_agi_2",
		},
		{
			name:      "required name",
			set:       map[string]string{"ai_system": " "},
			wantErr:   domain.ErrValidation,
			wantField: "ai_system",
		},
		{
			name:     "store failure",
			set:      map[string]string{"organization": "New Org"},
			storeErr: errors.New("timeout"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{updateErr: tt.storeErr}
			c, signals := newController(store)
			page := entries(1)
			c.SetVisible(page)
			c.BeginEdit(page[0])
			for name, raw := range tt.set {
				require.NoError(t, c.SetField(name, raw))
			}

			err := c.CommitEdit(context.Background())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				var vErr *domain.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				updates, _ := store.calls()
				assert.Zero(t, updates, "validation happens before any store call")
				_, editing := c.Editing()
				assert.True(t, editing)
			case tt.storeErr != nil:
				assert.ErrorIs(t, err, tt.storeErr)
				buf, editing := c.Editing()
				require.True(t, editing, "buffer is kept after a failed update")
				assert.Equal(t, "New Org", buf.Organization)
				assert.Zero(t, *signals)
			default:
				require.NoError(t, err)
				require.Len(t, store.updates, 1)
				assert.Equal(t, page[0].ID, store.updates[0].id)
				tt.check(t, store.updates[0].fields)
				_, editing := c.Editing()
				assert.False(t, editing)
				assert.Equal(t, 1, *signals)
			}
		})
	}
}

func TestEditBuffer(t *testing.T) {
	c, _ := newController(&fakeStore{})
	entry := &domain.Entry{
		ID:            uuid.New(),
		AISystem:      "o3",
		Organization:  "OpenAI",
		ARCAGI1:       domain.Float(75.7),
		CodePaperLink: domain.String("—"),
	}

	assert.ErrorIs(t, c.SetField("ai_system", "x"), bulkedit.ErrNotEditing)

	c.BeginEdit(entry)
	buf, ok := c.Editing()
	require.True(t, ok)
	assert.Equal(t, "75.7", buf.ARCAGI1)
	assert.Equal(t, "", buf.ARCAGI2)

	require.NoError(t, c.SetField("ai_system", "o3-high"))
	assert.Error(t, c.SetField("id", "x"))
	assert.Equal(t, "o3", entry.AISystem, "buffer is a copy")

	other := entries(1)[0]
	c.BeginEdit(other)
	buf, _ = c.Editing()
	assert.Equal(t, other.ID, buf.ID, "only one entry is edited at a time")

	c.CancelEdit()
	_, ok = c.Editing()
	assert.False(t, ok)
	assert.ErrorIs(t, c.CommitEdit(context.Background()), bulkedit.ErrNotEditing)
}

func TestAtMostOneMutationInFlight(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{})}
	c, _ := newController(store)
	page := entries(2)
	c.SetVisible(page)
	c.SelectAll()
	c.BeginEdit(page[0])

	done := make(chan error, 1)
	go func() {
		_, err := c.CommitBulkDelete(context.Background(), true)
		done <- err
	}()

	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.CommitEdit(context.Background()), bulkedit.ErrBusy)
	_, err := c.CommitBulkDelete(context.Background(), true)
	assert.ErrorIs(t, err, bulkedit.ErrBusy)

	close(store.gate)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
}

func TestDetach_DiscardsLateResult(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{})}
	c, signals := newController(store)
	page := entries(2)
	c.SetVisible(page)
	c.SelectAll()

	done := make(chan error, 1)
	go func() {
		_, err := c.CommitBulkDelete(context.Background(), true)
		done <- err
	}()

	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)
	c.Detach()
	close(store.gate)

	assert.NotPanics(t, func() { <-done })
	assert.Zero(t, *signals)
	assert.Equal(t, ids(page), c.Selected(), "state is untouched after detach")
}

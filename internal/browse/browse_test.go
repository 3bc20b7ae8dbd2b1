package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/Shivanand-hulikatti/tabletop/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingStore wraps the in-memory repository, counting calls and
// optionally holding list and join replies until released. A held call has
// already read or written the store when it signals.
type countingStore struct {
	*repository.MemoryRepository

	mu          sync.Mutex
	listCalls   int
	joinCalls   int
	holdJoin    chan struct{}
	joinStarted chan struct{}
	holdList    chan struct{}
	listStarted chan struct{}
}

func (s *countingStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	s.mu.Lock()
	s.listCalls++
	hold, started := s.holdList, s.listStarted
	s.holdList, s.listStarted = nil, nil
	s.mu.Unlock()

	events, err := s.MemoryRepository.ListEvents(ctx)
	if started != nil {
		close(started)
	}
	if hold != nil {
		<-hold
	}
	return events, err
}

func (s *countingStore) JoinEvent(ctx context.Context, eventID, email string) (*model.Attendee, error) {
	s.mu.Lock()
	s.joinCalls++
	hold, started := s.holdJoin, s.joinStarted
	s.mu.Unlock()

	a, err := s.MemoryRepository.JoinEvent(ctx, eventID, email)
	if started != nil {
		close(started)
	}
	if hold != nil {
		<-hold
	}
	return a, err
}

// holdNextList makes the next ListEvents wait after reading until the
// returned release func is called.
func (s *countingStore) holdNextList() (started <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdList = make(chan struct{})
	s.listStarted = make(chan struct{})
	hold := s.holdList
	return s.listStarted, func() { close(hold) }
}

func countsOf(v *View) map[string]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.counts.Snapshot()
}

func (s *countingStore) calls() (list, join int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.joinCalls
}

func seedEvent(t *testing.T, repo *repository.MemoryRepository, title string, capacity, attendees int) model.Event {
	t.Helper()
	ctx := context.Background()
	e, err := repo.CreateEvent(ctx, model.CreateEventRequest{
		Title:        title,
		HostName:     "Alex",
		HostEmail:    "alex@example.com",
		Location:     "Guardian Games, Kennewick",
		ScheduledAt:  time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC),
		TotalPlayers: capacity,
		GameType:     "Strategy",
	})
	require.NoError(t, err)
	for i := 0; i < attendees; i++ {
		_, err := repo.JoinEvent(ctx, e.ID, "guest@example.com")
		require.NoError(t, err)
	}
	return *e
}

func newView(t *testing.T) (*View, *countingStore) {
	t.Helper()
	store := &countingStore{MemoryRepository: repository.NewMemoryRepository()}
	return New(store, zap.NewNop()), store
}

func TestRenderStates(t *testing.T) {
	v, store := newView(t)
	assert.Equal(t, Loading, v.State())

	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, Empty, v.State())

	seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(context.Background()))
	assert.Equal(t, Populated, v.State())
}

func TestLoadDerivesCounts(t *testing.T) {
	v, store := newView(t)
	busy := seedEvent(t, store.MemoryRepository, "Catan", 4, 2)
	quiet := seedEvent(t, store.MemoryRepository, "Azul", 2, 0)

	require.NoError(t, v.Load(context.Background()))

	counts := countsOf(v)
	assert.Equal(t, 2, counts[busy.ID])
	_, present := counts[quiet.ID]
	assert.False(t, present)

	listings := v.Listings()
	require.Len(t, listings, 2)
	byID := map[string]Listing{}
	for _, l := range listings {
		byID[l.ID] = l
	}
	assert.Equal(t, 2, byID[busy.ID].AttendeeCount)
	assert.Equal(t, 3, byID[busy.ID].CurrentPlayers)
	assert.False(t, byID[busy.ID].Full)
	assert.Equal(t, 0, byID[quiet.ID].AttendeeCount)
	assert.Equal(t, 1, byID[quiet.ID].CurrentPlayers)
}

func TestInitialLoadFailureShowsEmptyState(t *testing.T) {
	v, store := newView(t)
	store.FailReads(errors.New("network down"))

	err := v.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrFetch)
	assert.Equal(t, Empty, v.State())
	assert.Empty(t, v.Listings())
}

func TestReloadFailureKeepsPreviousList(t *testing.T) {
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Catan", 4, 1)
	require.NoError(t, v.Load(context.Background()))

	store.FailReads(errors.New("network down"))
	assert.Error(t, v.Load(context.Background()))

	assert.Equal(t, Populated, v.State())
	require.Len(t, v.Listings(), 1)
	assert.Equal(t, 1, countsOf(v)[e.ID])
}

func TestPrependPutsNewEventFirst(t *testing.T) {
	v, store := newView(t)
	seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(context.Background()))

	v.Prepend(model.Event{ID: "fresh", Title: "Root", TotalPlayers: 4})
	listings := v.Listings()
	require.Len(t, listings, 2)
	assert.Equal(t, "fresh", listings[0].ID)
	assert.Equal(t, 0, listings[0].AttendeeCount)
}

func TestSelectUnknownEvent(t *testing.T) {
	v, _ := newView(t)
	require.NoError(t, v.Load(context.Background()))
	_, err := v.Select("missing")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestJoinIncrementsCountAndClosesDetail(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Catan", 3, 1)
	require.NoError(t, v.Load(ctx))

	d, err := v.Select(e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.CurrentPlayers)
	assert.Equal(t, LabelJoin, d.JoinLabel)
	assert.True(t, d.CanJoin)

	require.NoError(t, v.OpenJoinForm())
	d, _ = v.Detail()
	assert.False(t, d.CanConfirm)
	assert.ErrorIs(t, v.ConfirmJoin(ctx), ErrEmailRequired)

	require.NoError(t, v.SetJoinEmail("sam@example.com"))
	require.NoError(t, v.ConfirmJoin(ctx))

	assert.Equal(t, 2, countsOf(v)[e.ID])
	_, open := v.Detail()
	assert.False(t, open)

	list, join := store.calls()
	assert.Equal(t, 1, list, "join must not trigger a re-fetch")
	assert.Equal(t, 1, join)
	assert.Len(t, v.Listings(), 1)
}

func TestFullEventRefusesJoinWithoutRequest(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Coup", 3, 1)
	require.NoError(t, v.Load(ctx))

	_, err := v.Select(e.ID)
	require.NoError(t, err)
	require.NoError(t, v.OpenJoinForm())
	require.NoError(t, v.SetJoinEmail("first@example.com"))
	require.NoError(t, v.ConfirmJoin(ctx))

	d, err := v.Select(e.ID)
	require.NoError(t, err)
	assert.True(t, d.Full)
	assert.Equal(t, LabelFull, d.JoinLabel)
	assert.False(t, d.CanJoin)
	assert.Equal(t, 3, d.CurrentPlayers)

	assert.ErrorIs(t, v.OpenJoinForm(), ErrEventFull)
	assert.ErrorIs(t, v.ConfirmJoin(ctx), ErrJoinFormClosed)

	_, join := store.calls()
	assert.Equal(t, 1, join)
}

func TestSingleSeatEventIsFullFromTheStart(t *testing.T) {
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Solo", 1, 0)
	require.NoError(t, v.Load(context.Background()))

	d, err := v.Select(e.ID)
	require.NoError(t, err)
	assert.True(t, d.Full)
	assert.ErrorIs(t, v.OpenJoinForm(), ErrEventFull)
}

func TestJoinFailureKeepsFormOpenForRetry(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(ctx))

	_, err := v.Select(e.ID)
	require.NoError(t, err)
	require.NoError(t, v.OpenJoinForm())
	require.NoError(t, v.SetJoinEmail("sam@example.com"))

	store.FailWrites(errors.New("insert rejected"))
	err = v.ConfirmJoin(ctx)
	assert.ErrorIs(t, err, repository.ErrInsert)

	d, open := v.Detail()
	require.True(t, open)
	assert.True(t, d.JoinFormOpen)
	assert.Equal(t, JoinFailedMessage, d.Error)
	assert.False(t, d.Joining)
	assert.True(t, d.CanConfirm)
	assert.Equal(t, 0, countsOf(v)[e.ID])

	store.FailWrites(nil)
	require.NoError(t, v.ConfirmJoin(ctx))
	assert.Equal(t, 1, countsOf(v)[e.ID])
}

func TestJoinGuardRefusesOverlap(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(ctx))
	_, err := v.Select(e.ID)
	require.NoError(t, err)
	require.NoError(t, v.OpenJoinForm())
	require.NoError(t, v.SetJoinEmail("sam@example.com"))

	store.mu.Lock()
	store.holdJoin = make(chan struct{})
	store.joinStarted = make(chan struct{})
	hold, started := store.holdJoin, store.joinStarted
	store.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- v.ConfirmJoin(ctx) }()
	<-started

	d, _ := v.Detail()
	assert.True(t, d.Joining)
	assert.False(t, d.CanConfirm)
	assert.ErrorIs(t, v.ConfirmJoin(ctx), ErrJoinInProgress)
	assert.ErrorIs(t, v.SetJoinEmail("other@example.com"), ErrJoinInProgress)
	_, err = v.Select(e.ID)
	assert.ErrorIs(t, err, ErrJoinInProgress)

	close(hold)
	require.NoError(t, <-done)
	assert.Equal(t, 1, countsOf(v)[e.ID])
}

func TestReloadRebuildsCountsFromServer(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Catan", 10, 0)
	require.NoError(t, v.Load(ctx))

	// Another visitor joins directly against the store.
	_, err := store.MemoryRepository.JoinEvent(ctx, e.ID, "elsewhere@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, countsOf(v)[e.ID])

	require.NoError(t, v.Load(ctx))
	assert.Equal(t, 1, countsOf(v)[e.ID])
}

func TestReloadRefusedWhileJoinOutstanding(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(ctx))
	_, err := v.Select(e.ID)
	require.NoError(t, err)
	require.NoError(t, v.OpenJoinForm())
	require.NoError(t, v.SetJoinEmail("sam@example.com"))

	store.mu.Lock()
	store.holdJoin = make(chan struct{})
	store.joinStarted = make(chan struct{})
	hold, started := store.holdJoin, store.joinStarted
	store.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- v.ConfirmJoin(ctx) }()
	<-started

	// The join row is already stored; a reload now would count it twice.
	assert.ErrorIs(t, v.Load(ctx), ErrJoinInProgress)

	close(hold)
	require.NoError(t, <-done)

	rows, err := store.MemoryRepository.ListAttendees(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, countsOf(v)[e.ID])

	require.NoError(t, v.Load(ctx))
	assert.Equal(t, 1, countsOf(v)[e.ID])
}

func TestJoinRefusedWhileReloading(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	e := seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(ctx))
	_, err := v.Select(e.ID)
	require.NoError(t, err)
	require.NoError(t, v.OpenJoinForm())
	require.NoError(t, v.SetJoinEmail("sam@example.com"))

	started, release := store.holdNextList()
	done := make(chan error, 1)
	go func() { done <- v.Load(ctx) }()
	<-started

	d, open := v.Detail()
	require.True(t, open)
	assert.False(t, d.CanConfirm)
	assert.ErrorIs(t, v.ConfirmJoin(ctx), ErrLoadInProgress)

	release()
	require.NoError(t, <-done)
	require.NoError(t, v.ConfirmJoin(ctx))
	assert.Equal(t, 1, countsOf(v)[e.ID])
	_, join := store.calls()
	assert.Equal(t, 1, join)
}

func TestPrependDuringReloadSurvivesIt(t *testing.T) {
	ctx := context.Background()
	v, store := newView(t)
	seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(ctx))

	started, release := store.holdNextList()
	done := make(chan error, 1)
	go func() { done <- v.Load(ctx) }()
	<-started

	// Created after the reload read the list.
	created := seedEvent(t, store.MemoryRepository, "Root", 4, 0)
	v.Prepend(created)

	release()
	require.NoError(t, <-done)

	listings := v.Listings()
	require.Len(t, listings, 2)
	assert.Equal(t, created.ID, listings[0].ID)

	// The next reload sees it from the store and does not duplicate it.
	require.NoError(t, v.Load(ctx))
	assert.Len(t, v.Listings(), 2)
}

func TestListingShowsSchedule(t *testing.T) {
	v, store := newView(t)
	seedEvent(t, store.MemoryRepository, "Catan", 4, 0)
	require.NoError(t, v.Load(context.Background()))

	listings := v.Listings()
	require.Len(t, listings, 1)
	assert.Equal(t, "Wednesday, May 1 at 7:00 PM", listings[0].When)
}

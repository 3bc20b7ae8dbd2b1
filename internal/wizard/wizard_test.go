package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/catalog"
	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/Shivanand-hulikatti/tabletop/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	mu       sync.Mutex
	requests []model.CreateEventRequest
	err      error
	noRow    bool
	block    chan struct{}
	started  chan struct{}
}

func (f *fakeCreator) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block, started := f.block, f.started
	err, noRow := f.err, f.noRow
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if noRow {
		return nil, nil
	}
	return &model.Event{
		ID:           "evt-1",
		Title:        req.Title,
		TotalPlayers: req.TotalPlayers,
		GameType:     req.GameType,
		ImageURL:     req.ImageURL,
		Notes:        req.Notes,
	}, nil
}

func fixedClock() time.Time {
	return time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)
}

func newWorkflow(c Creator) *Workflow {
	return New(c, WithClock(fixedClock))
}

// fillToLocation drives a workflow through the first two steps.
func fillToLocation(t *testing.T, w *Workflow, game string) {
	t.Helper()
	require.NoError(t, w.SetDate("2024-05-01"))
	require.NoError(t, w.SetTime("19:00"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetField(FieldHostName, "Alex M."))
	require.NoError(t, w.SetField(FieldHostEmail, "alex@example.com"))
	require.NoError(t, w.SetField(FieldGameName, game))
	require.NoError(t, w.SetField(FieldTotalPlayers, "4"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetField(FieldLocation, catalog.Locations[0].String()))
	require.Equal(t, StepLocation, w.State())
}

func TestNextBlockedByEmptyFields(t *testing.T) {
	w := newWorkflow(&fakeCreator{})

	err := w.Next()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, StepSchedule, w.State())
	assert.Contains(t, verrs.Fields(), FieldDate)
	assert.False(t, w.Snapshot().CanAdvance)

	require.NoError(t, w.SetDate("2024-05-01"))
	require.NoError(t, w.Next())
	assert.Equal(t, StepDetails, w.State())

	require.NoError(t, w.SetField(FieldHostName, "Alex"))
	err = w.Next()
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, StepDetails, w.State())
	assert.Contains(t, verrs.Fields(), FieldHostEmail)
	assert.Contains(t, verrs.Fields(), FieldGameName)
	assert.Contains(t, verrs.Fields(), FieldTotalPlayers)
}

func TestWhitespaceCountsAsEmpty(t *testing.T) {
	w := newWorkflow(&fakeCreator{})
	fillToLocation(t, w, "Catan")
	require.NoError(t, w.SetField(FieldLocation, "   "))

	_, err := w.Submit(context.Background())
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, StepLocation, w.State())
}

func TestInvalidEmailBlocksDetailsStep(t *testing.T) {
	w := newWorkflow(&fakeCreator{})
	require.NoError(t, w.SetDate("2024-05-01"))
	require.NoError(t, w.Next())

	require.NoError(t, w.SetField(FieldHostName, "Alex M."))
	require.NoError(t, w.SetField(FieldHostEmail, "not-an-email"))
	require.NoError(t, w.SetField(FieldGameName, "Catan"))
	require.NoError(t, w.SetField(FieldTotalPlayers, "4"))
	assert.True(t, w.Snapshot().CanAdvance)

	for i := 0; i < 2; i++ {
		err := w.Next()
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, msgInvalidEmail, verrs.Fields()[FieldHostEmail])
		assert.Equal(t, StepDetails, w.State())
	}
	assert.Equal(t, msgInvalidEmail, w.Snapshot().EmailHint)

	require.NoError(t, w.SetField(FieldHostEmail, "alex@example.com"))
	require.NoError(t, w.Next())
	assert.Equal(t, StepLocation, w.State())
	assert.Empty(t, w.Snapshot().EmailHint)
}

func TestPlayersMustBeInRange(t *testing.T) {
	tests := []struct {
		players string
		ok      bool
	}{
		{"1", true},
		{"15", true},
		{"0", false},
		{"16", false},
		{"four", false},
	}
	for _, tt := range tests {
		t.Run(tt.players, func(t *testing.T) {
			w := newWorkflow(&fakeCreator{})
			require.NoError(t, w.SetDate("2024-05-01"))
			require.NoError(t, w.Next())
			require.NoError(t, w.SetField(FieldHostName, "Alex"))
			require.NoError(t, w.SetField(FieldHostEmail, "alex@example.com"))
			require.NoError(t, w.SetField(FieldGameName, "Catan"))
			require.NoError(t, w.SetField(FieldTotalPlayers, tt.players))

			err := w.Next()
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, StepLocation, w.State())
			} else {
				assert.Error(t, err)
				assert.Equal(t, StepDetails, w.State())
			}
		})
	}
}

func TestBackNeverValidatesAndCancelsFromFirstStep(t *testing.T) {
	w := newWorkflow(&fakeCreator{})
	fillToLocation(t, w, "Catan")
	require.NoError(t, w.SetField(FieldHostEmail, "broken"))

	cancelled, err := w.Back()
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, StepDetails, w.State())

	cancelled, err = w.Back()
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, StepSchedule, w.State())

	cancelled, err = w.Back()
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, Draft{}, w.Snapshot().Draft)
}

func TestDateAndTimeRecombination(t *testing.T) {
	w := newWorkflow(&fakeCreator{})

	require.NoError(t, w.SetDate("2024-05-01"))
	assert.Equal(t, "2024-05-01T"+DefaultTime, w.Snapshot().Draft.ScheduledAt)

	require.NoError(t, w.SetTime("18:30"))
	assert.Equal(t, "2024-05-01T18:30", w.Snapshot().Draft.ScheduledAt)

	require.NoError(t, w.SetTime("20:15"))
	assert.Equal(t, "2024-05-01T20:15", w.Snapshot().Draft.ScheduledAt)

	require.NoError(t, w.SetDate("2024-06-02"))
	snap := w.Snapshot()
	assert.Equal(t, "2024-06-02T20:15", snap.Draft.ScheduledAt)
	assert.Equal(t, "2024-06-02", snap.Date)
	assert.Equal(t, "20:15", snap.Time)
}

func TestTimeBeforeDateDefaultsToToday(t *testing.T) {
	w := newWorkflow(&fakeCreator{})
	require.NoError(t, w.SetTime("17:45"))
	assert.Equal(t, "2024-04-20T17:45", w.Snapshot().Draft.ScheduledAt)
}

func TestClearingDateBlocksScheduleStep(t *testing.T) {
	w := newWorkflow(&fakeCreator{})
	require.NoError(t, w.SetTime("17:45"))
	require.NoError(t, w.SetDate(""))
	assert.Equal(t, "17:45", w.Snapshot().Time)

	assert.Error(t, w.Next())
	assert.Equal(t, StepSchedule, w.State())
}

func TestSubmitBuildsRequestFromCatalog(t *testing.T) {
	creator := &fakeCreator{}
	w := newWorkflow(creator)
	fillToLocation(t, w, "Catan")

	event, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, event)

	require.Len(t, creator.requests, 1)
	req := creator.requests[0]
	assert.Equal(t, "Catan", req.Title)
	assert.Equal(t, "Strategy", req.GameType)
	assert.Equal(t, catalog.Lookup("Catan").Image, req.ImageURL)
	assert.Equal(t, 4, req.TotalPlayers)
	assert.Equal(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), req.ScheduledAt)
	assert.Nil(t, req.Notes)
	assert.Equal(t, "Guardian Games, Kennewick", req.Location)

	snap := w.Snapshot()
	assert.Equal(t, StepSchedule, snap.State)
	assert.Equal(t, Draft{}, snap.Draft)
}

func TestSubmitUnknownTitleUsesFallback(t *testing.T) {
	creator := &fakeCreator{}
	w := newWorkflow(creator)
	fillToLocation(t, w, "Homebrew Game")
	require.NoError(t, w.SetField(FieldNotes, "  bring snacks "))

	event, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Board Game", event.GameType)
	assert.Equal(t, catalog.Lookup(catalog.FallbackTitle).Image, event.ImageURL)
	require.NotNil(t, event.Notes)
	assert.Equal(t, "bring snacks", *event.Notes)
}

func TestSubmitOnlyFromFinalStep(t *testing.T) {
	creator := &fakeCreator{}
	w := newWorkflow(creator)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotFinalStep)
	assert.Empty(t, creator.requests)
}

func TestSubmitFailureKeepsDraftForRetry(t *testing.T) {
	creator := &fakeCreator{err: errors.New("backend rejected row")}
	w := newWorkflow(creator)
	fillToLocation(t, w, "Azul")

	_, err := w.Submit(context.Background())
	require.Error(t, err)

	snap := w.Snapshot()
	assert.Equal(t, Failed, snap.State)
	assert.Equal(t, 3, snap.Step)
	assert.Equal(t, SubmitFailedMessage, snap.Error)
	assert.False(t, snap.Submitting)
	assert.True(t, snap.CanSubmit)
	assert.Equal(t, "Azul", snap.Draft.GameName)

	creator.mu.Lock()
	creator.err = nil
	creator.mu.Unlock()

	event, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Azul", event.Title)
	assert.Len(t, creator.requests, 2)
	assert.Empty(t, w.Snapshot().Error)
}

func TestSubmitWithoutReturnedRowFails(t *testing.T) {
	w := newWorkflow(&fakeCreator{noRow: true})
	fillToLocation(t, w, "Catan")

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, repository.ErrInsert)
	assert.Equal(t, Failed, w.State())
}

func TestSubmitGuardRefusesOverlap(t *testing.T) {
	creator := &fakeCreator{block: make(chan struct{}), started: make(chan struct{})}
	w := newWorkflow(creator)
	fillToLocation(t, w, "Catan")

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-creator.started

	assert.True(t, w.Snapshot().Submitting)
	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitting)
	assert.ErrorIs(t, w.SetField(FieldNotes, "late edit"), ErrSubmitting)
	_, err = w.Back()
	assert.ErrorIs(t, err, ErrSubmitting)

	close(creator.block)
	require.NoError(t, <-done)
	assert.Len(t, creator.requests, 1)
	assert.Equal(t, StepSchedule, w.State())
}

func TestSetFieldUnknown(t *testing.T) {
	w := newWorkflow(&fakeCreator{})
	assert.ErrorIs(t, w.SetField("favourite_colour", "blue"), ErrUnknownField)
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("local@domain.tld"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a b@c.d"))
	assert.False(t, ValidEmail("a@b"))
}

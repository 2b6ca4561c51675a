package tram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/storage"
	"tidbyt.dev/tram/testutil"
	"tidbyt.dev/tram/widget"
)

type fakeArrivals struct {
	arrivals Arrivals
	panics   bool

	mutex   sync.Mutex
	queries []string
	filters []model.WidgetFilter
}

func (f *fakeArrivals) Arrivals(ctx context.Context, stationID string, filter model.WidgetFilter) Arrivals {
	if f.panics {
		panic("boom")
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.queries = append(f.queries, stationID)
	f.filters = append(f.filters, filter)
	return f.arrivals
}

type fakeConfigs struct {
	cfg widget.Config
	err error
}

func (f fakeConfigs) Load(widgetID string) (widget.Config, error) {
	return f.cfg, f.err
}

func TestRefreshUnconfigured(t *testing.T) {
	source := &fakeArrivals{}
	r := NewRefresher(source, fakeConfigs{})

	display := r.Refresh(context.Background(), "1")
	assert.Equal(t, Display{Message: MessageConfigure}, display)
	assert.Equal(t, 0, len(source.queries))
}

func TestRefreshCurrentStop(t *testing.T) {
	source := &fakeArrivals{
		arrivals: Arrivals{List: []model.TramArrival{
			arrival("T1", "Harbour", 0, "t1", "s"),
			arrival("T2", "University", 75, "t2", "s"),
			arrival("T1", "Harbour", 80, "t3", "s"),
		}},
	}
	cfg := widget.Config{
		CurrentIndex: 1,
		Stops: []widget.StopConfig{
			{StationID: "harbour", StationName: "Harbour"},
			{StationID: "central", StationName: "Central Station", Filter: model.WidgetFilter{Direction: "Harbour"}},
			{StationID: "airport", StationName: "Airport"},
		},
	}
	r := NewRefresher(source, fakeConfigs{cfg: cfg})

	display := r.Refresh(context.Background(), "1")
	assert.Equal(t, Display{
		StationName: "Central Station",
		Position:    "2/3",
		Next:        "T1 Harbour · Now",
		Alternate:   "T2 University · 1h 15m",
		Arrivals:    source.arrivals.List,
	}, display)

	assert.Equal(t, []string{"central"}, source.queries)
	assert.Equal(t, []model.WidgetFilter{{Direction: "Harbour"}}, source.filters)
}

func TestRefreshSingleStop(t *testing.T) {
	source := &fakeArrivals{
		arrivals: Arrivals{List: []model.TramArrival{arrival("T1", "Harbour", 1, "t1", "s")}},
	}
	cfg := widget.Config{Stops: []widget.StopConfig{{StationID: "central", StationName: "Central Station"}}}
	r := NewRefresher(source, fakeConfigs{cfg: cfg})

	display := r.Refresh(context.Background(), "1")
	assert.Equal(t, "", display.Position)
	assert.Equal(t, "T1 Harbour · 1 min", display.Next)
	assert.Equal(t, "", display.Alternate)
	assert.False(t, display.Error)
}

func TestRefreshNoTrams(t *testing.T) {
	source := &fakeArrivals{arrivals: Arrivals{List: []model.TramArrival{}}}
	cfg := widget.Config{Stops: []widget.StopConfig{{StationID: "central", StationName: "Central Station"}}}
	r := NewRefresher(source, fakeConfigs{cfg: cfg})

	display := r.Refresh(context.Background(), "1")
	assert.Equal(t, "Central Station", display.StationName)
	assert.Equal(t, MessageNoTrams, display.Message)
	assert.False(t, display.Error)
}

func TestRefreshFallbackIsNotAnError(t *testing.T) {
	source := &fakeArrivals{arrivals: Arrivals{
		List:     MockArrivals(),
		Fallback: true,
		Err:      ErrFeedUnavailable,
	}}
	cfg := widget.Config{Stops: []widget.StopConfig{{StationID: "central", StationName: "Central Station"}}}
	r := NewRefresher(source, fakeConfigs{cfg: cfg})

	display := r.Refresh(context.Background(), "1")
	assert.True(t, display.Fallback)
	assert.False(t, display.Error)
	assert.Equal(t, MockArrivals(), display.Arrivals)
	assert.NotEqual(t, "", display.Next)
}

func TestRefreshStorageFailure(t *testing.T) {
	r := NewRefresher(&fakeArrivals{}, fakeConfigs{err: errors.New("disk on fire")})

	display := r.Refresh(context.Background(), "1")
	assert.Equal(t, Display{Error: true, Message: MessageError, Hint: HintRetry}, display)
}

func TestRefreshRecoversPanic(t *testing.T) {
	cfg := widget.Config{Stops: []widget.StopConfig{{StationID: "central", StationName: "Central Station"}}}
	r := NewRefresher(&fakeArrivals{panics: true}, fakeConfigs{cfg: cfg})

	display := r.Refresh(context.Background(), "1")
	assert.Equal(t, Display{Error: true, Message: MessageError, Hint: HintRetry}, display)
}

func TestRefreshEndToEnd(t *testing.T) {
	server := managerFixture()
	defer server.Server.Close()

	server.SetFeed("/static.zip", testutil.BuildZip(t, fixtureFiles()))
	server.SetFeed("/realtime", realtimeFixture(
		t,
		testutil.TripUpdate("t1", "r1", testutil.StopTimeUpdate("harbour_1", at(12*time.Minute), 0)),
		testutil.TripUpdate("t2", "r2", testutil.StopTimeUpdate("central_2", at(2*time.Minute), 0)),
		testutil.TripUpdate("t1", "r1", testutil.StopTimeUpdate("central_1", at(4*time.Minute), 0)),
	))
	m := newTestManager(server)

	store := widget.NewStore(storage.NewMemoryStorage())
	_, err := store.AddStop("w", widget.StopConfig{StationID: "central", StationName: "Central Station"})
	require.NoError(t, err)
	_, err = store.AddStop("w", widget.StopConfig{StationID: "harbour", StationName: "Harbour"})
	require.NoError(t, err)

	r := NewRefresher(m, store)

	display := r.Refresh(context.Background(), "w")
	assert.Equal(t, "Central Station", display.StationName)
	assert.Equal(t, "1/2", display.Position)
	assert.Equal(t, "T2 University · 2 min", display.Next)
	assert.Equal(t, "T1 Harbour · 4 min", display.Alternate)
	assert.False(t, display.Fallback)

	_, err = store.Next("w")
	require.NoError(t, err)

	display = r.Refresh(context.Background(), "w")
	assert.Equal(t, "Harbour", display.StationName)
	assert.Equal(t, "2/2", display.Position)
	assert.Equal(t, "T1 Harbour · 12 min", display.Next)

	// Concurrent refreshes are independent
	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := r.Refresh(context.Background(), "w")
			assert.Equal(t, "Harbour", d.StationName)
		}()
	}
	wg.Wait()
}

package tram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tidbyt.dev/tram/downloader"
	"tidbyt.dev/tram/metrics"
	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/parse"
)

const (
	DefaultRealtimeTimeout = 30 * time.Second
	DefaultRealtimeMaxSize = 1 << 20 // 1 MB
	DefaultStaticTimeout   = 60 * time.Second
	DefaultStaticMaxSize   = 800 << 20 // 800 MB
)

var ErrFeedUnavailable = errors.New("realtime feed unavailable")

// Manager fetches static and realtime data and resolves arrivals
// from them.
//
// Static data is loaded once and then kept for the lifetime of the
// Manager. Realtime data is downloaded on every call, unless
// RealtimeTTL is set.
type Manager struct {
	StaticURL       string
	RealtimeURL     string
	Headers         map[string]string
	RealtimeTTL     time.Duration
	RealtimeTimeout time.Duration
	RealtimeMaxSize int
	StaticTimeout   time.Duration
	StaticMaxSize   int
	Downloader      downloader.Downloader
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
	TimeNow         func() time.Time

	static *StaticCache
}

func NewManager(staticURL string, realtimeURL string) *Manager {
	m := &Manager{
		StaticURL:       staticURL,
		RealtimeURL:     realtimeURL,
		Headers:         map[string]string{},
		RealtimeTimeout: DefaultRealtimeTimeout,
		RealtimeMaxSize: DefaultRealtimeMaxSize,
		StaticTimeout:   DefaultStaticTimeout,
		StaticMaxSize:   DefaultStaticMaxSize,
		Downloader:      downloader.NewMemoryDownloader(),
		Logger:          slog.Default().With(slog.String("component", "tram_manager")),
		TimeNow:         time.Now,
	}
	m.static = NewStaticCache(m.loadStatic)
	return m
}

func (m *Manager) loadStatic(ctx context.Context) (*Static, error) {
	body, err := m.Downloader.Get(
		ctx,
		m.StaticURL,
		m.Headers,
		downloader.GetOptions{
			Cache:   false,
			Timeout: m.StaticTimeout,
			MaxSize: m.StaticMaxSize,
		},
	)
	if err != nil {
		m.Metrics.StaticLoaded(0, err)
		return nil, fmt.Errorf("downloading static: %w", err)
	}

	tables, err := parse.ParseStatic(body)
	if err != nil {
		m.Metrics.StaticLoaded(0, err)
		return nil, fmt.Errorf("parsing static: %w", err)
	}

	static := NewStatic(tables)
	m.Metrics.StaticLoaded(len(static.Stations), nil)
	m.Logger.Info(
		"loaded static data",
		slog.String("url", m.StaticURL),
		slog.Int("stations", len(static.Stations)),
		slog.Int("trips", len(tables.Trips)),
	)

	return static, nil
}

// The static data, loading it if needed. Errors wrap
// ErrStaticUnavailable.
func (m *Manager) Static(ctx context.Context) (*Static, error) {
	return m.static.Load(ctx)
}

// True once static data has been loaded. Never triggers a load.
func (m *Manager) StaticLoaded() bool {
	return m.static.Loaded()
}

// All stations, sorted by name. If static data can't be loaded, the
// fallback stations are returned and the bool is true.
func (m *Manager) Stations(ctx context.Context) ([]model.Station, bool) {
	static, err := m.Static(ctx)
	if err != nil {
		m.Logger.Warn("serving fallback stations", slog.Any("error", err))
		return FallbackStations(), true
	}
	return static.Stations, false
}

// Downloads and decodes the realtime feed. Download failures wrap
// ErrFeedUnavailable. Decode failures wrap the parse package's
// errors.
func (m *Manager) Feed(ctx context.Context) (*parse.FeedMessage, error) {
	body, err := m.Downloader.Get(
		ctx,
		m.RealtimeURL,
		m.Headers,
		downloader.GetOptions{
			Cache:    m.RealtimeTTL > 0,
			CacheTTL: m.RealtimeTTL,
			Timeout:  m.RealtimeTimeout,
			MaxSize:  m.RealtimeMaxSize,
		},
	)
	m.Metrics.FeedFetched(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}

	feed, err := parse.ParseRealtime(body)
	if err != nil {
		m.Metrics.FeedDecodeFailed()
		return nil, err
	}

	return feed, nil
}

// Arrivals at a station from a fresh realtime feed, unfiltered and
// unlimited. Returns ErrNoArrivals if the join produced nothing.
func (m *Manager) RealtimeArrivals(ctx context.Context, stationID string) ([]model.TramArrival, error) {
	static, err := m.Static(ctx)
	if err != nil {
		return nil, err
	}

	feed, err := m.Feed(ctx)
	if err != nil {
		return nil, err
	}

	arrivals := ResolveArrivals(static, feed, stationID, m.TimeNow())
	if len(arrivals) == 0 {
		return nil, fmt.Errorf("%w at %s", ErrNoArrivals, stationID)
	}

	return arrivals, nil
}

// Result of Manager.Arrivals. When Fallback is set, List holds mock
// arrivals and Err says why.
type Arrivals struct {
	List     []model.TramArrival
	Fallback bool
	Err      error
}

// Filtered and limited arrivals for display. Never fails: if
// realtime arrivals can't be resolved, mock arrivals are returned
// instead, unfiltered.
func (m *Manager) Arrivals(ctx context.Context, stationID string, filter model.WidgetFilter) Arrivals {
	arrivals, err := m.RealtimeArrivals(ctx, stationID)
	if err != nil {
		reason := fallbackReason(err)
		m.Metrics.ArrivalFallback(reason)
		m.Logger.Warn(
			"serving mock arrivals",
			slog.String("station_id", stationID),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
		return Arrivals{
			List:     MockArrivals(),
			Fallback: true,
			Err:      err,
		}
	}

	return Arrivals{
		List: LimitArrivals(FilterArrivals(arrivals, filter), MaxArrivals),
	}
}

// Line and destination pairs currently served at a station, for
// populating filter choices. Empty on any failure.
func (m *Manager) AvailableLines(ctx context.Context, stationID string) []model.LineDirection {
	arrivals, err := m.RealtimeArrivals(ctx, stationID)
	if err != nil {
		m.Logger.Warn(
			"no available lines",
			slog.String("station_id", stationID),
			slog.Any("error", err),
		)
		return []model.LineDirection{}
	}
	return LineDirections(arrivals)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrStaticUnavailable):
		return metrics.ReasonStatic
	case errors.Is(err, ErrFeedUnavailable):
		return metrics.ReasonDownload
	case errors.Is(err, ErrNoArrivals):
		return metrics.ReasonEmpty
	}
	return metrics.ReasonDecode
}

package tram

import (
	"context"
	"fmt"
	"log/slog"

	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/report"
	"tidbyt.dev/tram/widget"
)

const (
	MessageConfigure = "Tap to configure"
	MessageNoTrams   = "No upcoming trams"
	MessageError     = "Error"
	HintRetry        = "Tap to retry"
)

type ArrivalSource interface {
	Arrivals(ctx context.Context, stationID string, filter model.WidgetFilter) Arrivals
}

type ConfigSource interface {
	Load(widgetID string) (widget.Config, error)
}

// What a widget shows. Next and Alternate are the first two arrivals,
// formatted. Position is e.g. "2/3", and blank for single stop
// widgets.
type Display struct {
	StationName string
	Position    string
	Next        string
	Alternate   string
	Arrivals    []model.TramArrival
	Fallback    bool
	Error       bool
	Message     string
	Hint        string
}

// Renders widgets. This is the one place where failures become
// visible to users, as an error display.
//
// Refreshes share no state, so the scheduler, taps and config saves
// can trigger them concurrently.
type Refresher struct {
	Arrivals ArrivalSource
	Configs  ConfigSource
	Logger   *slog.Logger
}

func NewRefresher(arrivals ArrivalSource, configs ConfigSource) *Refresher {
	return &Refresher{
		Arrivals: arrivals,
		Configs:  configs,
		Logger:   slog.Default().With(slog.String("component", "refresher")),
	}
}

func (r *Refresher) Refresh(ctx context.Context, widgetID string) (display Display) {
	tags := map[string]string{"widget_id": widgetID}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.Logger.Error(
				"widget refresh panicked",
				slog.String("widget_id", widgetID),
				slog.Any("panic", recovered),
			)
			report.Panic(recovered, tags)
			display = errorDisplay()
		}
	}()

	display, err := r.refresh(ctx, widgetID)
	if err != nil {
		r.Logger.Error(
			"widget refresh failed",
			slog.String("widget_id", widgetID),
			slog.Any("error", err),
		)
		report.Error(err, tags)
		return errorDisplay()
	}

	return display
}

func (r *Refresher) refresh(ctx context.Context, widgetID string) (Display, error) {
	cfg, err := r.Configs.Load(widgetID)
	if err != nil {
		return Display{}, fmt.Errorf("loading widget config: %w", err)
	}

	stop, ok := cfg.Current()
	if !ok {
		return Display{Message: MessageConfigure}, nil
	}

	arrivals := r.Arrivals.Arrivals(ctx, stop.StationID, stop.Filter)

	display := Display{
		StationName: stop.StationName,
		Arrivals:    arrivals.List,
		Fallback:    arrivals.Fallback,
	}
	if len(cfg.Stops) > 1 {
		display.Position = fmt.Sprintf("%d/%d", cfg.CurrentIndex+1, len(cfg.Stops))
	}

	if len(arrivals.List) == 0 {
		display.Message = MessageNoTrams
		return display, nil
	}
	display.Next = formatArrival(arrivals.List[0])
	if len(arrivals.List) > 1 {
		display.Alternate = formatArrival(arrivals.List[1])
	}

	return display, nil
}

func formatArrival(a model.TramArrival) string {
	return fmt.Sprintf(
		"%s %s · %s",
		a.Line,
		a.Destination,
		model.FormatMinutesUntilArrival(a.MinutesUntilArrival),
	)
}

func errorDisplay() Display {
	return Display{
		Error:   true,
		Message: MessageError,
		Hint:    HintRetry,
	}
}

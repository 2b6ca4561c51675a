package tram

import (
	"errors"
	"sort"
	"time"

	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/parse"
)

const (
	// Arrivals shown per widget.
	MaxArrivals = 6

	// Arrivals further out than this many minutes are dropped.
	ArrivalWindowMinutes = 90
)

var ErrNoArrivals = errors.New("no arrivals")

// Joins a decoded realtime feed with the static tables, producing
// arrivals at the station stationID belongs to. Arrivals outside the
// next 90 minutes are dropped, including ones already in the past.
//
// Entities without trip updates, trips missing from the static
// tables, canceled trips and skipped stops are ignored. Results are
// ordered by minutes until arrival, ties in feed order.
func ResolveArrivals(
	static *Static,
	feed *parse.FeedMessage,
	stationID string,
	now time.Time,
) []model.TramArrival {

	relevant := static.RelevantStops(stationID)
	nowUnix := now.Unix()

	arrivals := []model.TramArrival{}
	for _, entity := range feed.Entities {
		tu := entity.TripUpdate
		if tu == nil {
			continue
		}
		if tu.Trip.ScheduleRelationship == parse.TripCanceled {
			continue
		}

		trip, found := static.Trip(tu.Trip.TripID)
		if !found {
			continue
		}
		line := static.LineLabel(trip)
		destination := static.Destination(trip)

		for _, stu := range tu.StopTimeUpdates {
			if !relevant[stu.StopID] {
				continue
			}
			if stu.ScheduleRelationship == parse.StopTimeUpdateSkipped {
				continue
			}

			eventTime, ok := stu.EventTime()
			if !ok {
				continue
			}

			minutes := minutesUntil(eventTime, nowUnix)
			if minutes < 0 || minutes > ArrivalWindowMinutes {
				continue
			}

			arrivals = append(arrivals, model.TramArrival{
				Line:                line,
				Destination:         destination,
				Time:                model.ArrivalDisplay(minutes),
				MinutesUntilArrival: minutes,
				TripID:              trip.TripID,
				StopID:              stu.StopID,
			})
		}
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].MinutesUntilArrival < arrivals[j].MinutesUntilArrival
	})

	return arrivals
}

// Whole minutes from now until event, rounded down. An event 30
// seconds ago is -1 minutes away.
func minutesUntil(event int64, now int64) int {
	delta := event - now
	minutes := delta / 60
	if delta%60 != 0 && delta < 0 {
		minutes--
	}
	return int(minutes)
}

// Keeps the arrivals matching filter, preserving order. An inactive
// filter keeps everything.
func FilterArrivals(arrivals []model.TramArrival, filter model.WidgetFilter) []model.TramArrival {
	filtered := make([]model.TramArrival, 0, len(arrivals))
	for _, a := range arrivals {
		if filter.Matches(a) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// The first n arrivals.
func LimitArrivals(arrivals []model.TramArrival, n int) []model.TramArrival {
	if n < 0 {
		n = 0
	}
	if len(arrivals) <= n {
		return arrivals
	}
	return arrivals[:n]
}

// Distinct line and destination pairs among arrivals, ordered by line
// and then destination.
func LineDirections(arrivals []model.TramArrival) []model.LineDirection {
	seen := map[model.LineDirection]bool{}
	lines := []model.LineDirection{}
	for _, a := range arrivals {
		ld := model.LineDirection{Line: a.Line, Destination: a.Destination}
		if seen[ld] {
			continue
		}
		seen[ld] = true
		lines = append(lines, ld)
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Line != lines[j].Line {
			return lines[i].Line < lines[j].Line
		}
		return lines[i].Destination < lines[j].Destination
	})

	return lines
}

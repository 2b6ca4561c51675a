package model

import (
	"fmt"
)

// Holds all external facing types and constants.

// A station as presented to the configuration screens. Lines holds
// the line labels known to serve the station, if any. Stations read
// from a static archive leave it empty, as stops.txt, routes.txt and
// trips.txt don't link stops to routes. Live lines for a station come
// from the realtime join instead.
type Station struct {
	ID    string
	Name  string
	Lines []string
}

type TripInfo struct {
	TripID    string
	RouteID   string
	Headsign  string
	ShortName string
}

// A resolved, displayable prediction.
type TramArrival struct {
	Line                string
	Destination         string
	Time                string
	MinutesUntilArrival int

	// Not displayed, but handy when debugging a feed.
	TripID string
	StopID string
}

// Distinct line and destination pair currently served at a station.
type LineDirection struct {
	Line        string
	Destination string
}

// Optional line/direction constraint on a widget's arrivals. Blank
// fields are unset.
type WidgetFilter struct {
	Line      string
	Direction string
}

// Active if either field is set.
func (f WidgetFilter) Active() bool {
	return f.Line != "" || f.Direction != ""
}

// Matches if all set fields equal the arrival's line and
// destination.
func (f WidgetFilter) Matches(a TramArrival) bool {
	if f.Line != "" && f.Line != a.Line {
		return false
	}
	if f.Direction != "" && f.Direction != a.Destination {
		return false
	}
	return true
}

// Short form used in TramArrival.Time.
func ArrivalDisplay(minutes int) string {
	if minutes <= 0 {
		return "Now"
	}
	if minutes == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d min", minutes)
}

// Long form used by the widget renderer. Anything an hour or more
// away is given in hours and minutes.
func FormatMinutesUntilArrival(minutes int) string {
	if minutes < 60 {
		return ArrivalDisplay(minutes)
	}
	h := minutes / 60
	m := minutes % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

package tram

import (
	"tidbyt.dev/tram/model"
)

// Served when the static archive can't be loaded. Sorted by name.
func FallbackStations() []model.Station {
	return []model.Station{
		{ID: "airport", Name: "Airport", Lines: []string{"T3"}},
		{ID: "central", Name: "Central Station", Lines: []string{"T1", "T2", "T3"}},
		{ID: "harbour", Name: "Harbour", Lines: []string{"T2"}},
		{ID: "market", Name: "Market Square", Lines: []string{"T1", "T2"}},
		{ID: "university", Name: "University", Lines: []string{"T1"}},
	}
}

// Served in place of realtime arrivals when those can't be had, so
// that there's always something to show.
func MockArrivals() []model.TramArrival {
	mock := []model.TramArrival{}
	for _, a := range []struct {
		line        string
		destination string
		minutes     int
	}{
		{"T1", "University", 2},
		{"T2", "Harbour", 5},
		{"T1", "Central Station", 9},
		{"T3", "Airport", 14},
	} {
		mock = append(mock, model.TramArrival{
			Line:                a.line,
			Destination:         a.destination,
			Time:                model.ArrivalDisplay(a.minutes),
			MinutesUntilArrival: a.minutes,
		})
	}
	return mock
}

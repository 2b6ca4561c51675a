package tram

import (
	"sort"
	"strings"

	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/parse"
)

// Shown when a trip has no headsign.
const DestinationPlaceholder = "Unknown"

// Lookup indices over the static tables. Immutable once built.
type Static struct {
	Stations []model.Station

	stationByID   map[string]model.Station
	childToParent map[string]string
	childrenOf    map[string][]string
	routeNames    map[string]string
	trips         map[string]model.TripInfo
}

func NewStatic(tables *parse.StaticTables) *Static {
	s := &Static{
		Stations:      tables.Stations,
		stationByID:   map[string]model.Station{},
		childToParent: tables.ChildToParent,
		childrenOf:    map[string][]string{},
		routeNames:    tables.RouteNames,
		trips:         tables.Trips,
	}

	if s.Stations == nil {
		s.Stations = []model.Station{}
	}
	if s.childToParent == nil {
		s.childToParent = map[string]string{}
	}
	if s.routeNames == nil {
		s.routeNames = map[string]string{}
	}
	if s.trips == nil {
		s.trips = map[string]model.TripInfo{}
	}

	for _, station := range s.Stations {
		s.stationByID[station.ID] = station
	}

	for child, parent := range s.childToParent {
		s.childrenOf[parent] = append(s.childrenOf[parent], child)
	}
	for parent := range s.childrenOf {
		sort.Strings(s.childrenOf[parent])
	}

	return s
}

// Resolves a stop ID to its station level ID. IDs without a parent
// are their own station.
func (s *Static) ParentOf(stopID string) string {
	if parent, found := s.childToParent[stopID]; found {
		return parent
	}
	return stopID
}

// The set of stop IDs served as part of the station that stopID
// belongs to: the station itself, and all its children.
func (s *Static) RelevantStops(stopID string) map[string]bool {
	parent := s.ParentOf(stopID)

	relevant := map[string]bool{parent: true}
	for _, child := range s.childrenOf[parent] {
		relevant[child] = true
	}

	return relevant
}

func (s *Static) Trip(tripID string) (model.TripInfo, bool) {
	trip, found := s.trips[tripID]
	return trip, found
}

// Line label for a trip. The trip's short name wins, then the route's
// short name, then the raw route ID.
func (s *Static) LineLabel(trip model.TripInfo) string {
	if shortName := strings.TrimSpace(trip.ShortName); shortName != "" {
		return strings.ToUpper(shortName)
	}
	if name, found := s.routeNames[trip.RouteID]; found && name != "" {
		return name
	}
	return trip.RouteID
}

func (s *Static) Destination(trip model.TripInfo) string {
	if trip.Headsign == "" {
		return DestinationPlaceholder
	}
	return trip.Headsign
}

func (s *Static) Station(id string) (model.Station, bool) {
	station, found := s.stationByID[s.ParentOf(id)]
	return station, found
}

package parse

import (
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"tidbyt.dev/tram/model"
)

type StopCSV struct {
	ID            string `csv:"stop_id"`
	Name          string `csv:"stop_name"`
	LocationType  string `csv:"location_type"`
	ParentStation string `csv:"parent_station"`
}

// Parses stops.txt into a list of stations, and a map from stop ID to
// the ID of the station it belongs to.
//
// Feeds with at least one location_type=1 row have those rows
// returned as stations, with children mapped via parent_station.
// Feeds without any are grouped by stop name instead, ignoring
// parent_station: the first stop seen for a name represents the
// station, and all other stops with the same name are mapped to it.
//
// Stations are deduplicated by name (first one wins) and sorted by
// name. A stops.txt lacking stop_id or stop_name results in no
// stations.
func ParseStops(data io.Reader) ([]model.Station, map[string]string, error) {
	stopCsv := []*StopCSV{}
	ok, err := readTable(data, &stopCsv, "stop_id", "stop_name")
	if err != nil {
		return nil, nil, errors.Wrap(err, "unmarshaling stops csv")
	}
	if !ok {
		return []model.Station{}, map[string]string{}, nil
	}

	for _, st := range stopCsv {
		st.ID = strings.TrimSpace(st.ID)
		st.Name = strings.TrimSpace(st.Name)
		st.LocationType = strings.TrimSpace(st.LocationType)
		st.ParentStation = strings.TrimSpace(st.ParentStation)
	}

	hierarchical := false
	for _, st := range stopCsv {
		if st.LocationType == "1" {
			hierarchical = true
			break
		}
	}

	var stations []model.Station
	var childToParent map[string]string
	if hierarchical {
		stations, childToParent = stationsByHierarchy(stopCsv)
	} else {
		stations, childToParent = stationsByName(stopCsv)
	}

	return dedupAndSort(stations), childToParent, nil
}

func stationsByHierarchy(stops []*StopCSV) ([]model.Station, map[string]string) {
	stations := []model.Station{}
	childToParent := map[string]string{}

	for _, st := range stops {
		if st.ID == "" {
			continue
		}
		if st.LocationType == "1" {
			stations = append(stations, model.Station{ID: st.ID, Name: st.Name})
		}
		if st.ParentStation != "" {
			childToParent[st.ID] = st.ParentStation
		}
	}

	return stations, childToParent
}

func stationsByName(stops []*StopCSV) ([]model.Station, map[string]string) {
	stations := []model.Station{}
	childToParent := map[string]string{}
	primaryByName := map[string]string{}

	for _, st := range stops {
		if st.ID == "" {
			continue
		}
		primary, found := primaryByName[st.Name]
		if !found {
			primaryByName[st.Name] = st.ID
			stations = append(stations, model.Station{ID: st.ID, Name: st.Name})
			continue
		}
		if primary != st.ID {
			childToParent[st.ID] = primary
		}
	}

	return stations, childToParent
}

func dedupAndSort(stations []model.Station) []model.Station {
	seen := map[string]bool{}
	result := []model.Station{}
	for _, s := range stations {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		result = append(result, s)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

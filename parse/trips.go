package parse

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"tidbyt.dev/tram/model"
)

type TripCSV struct {
	ID        string `csv:"trip_id"`
	RouteID   string `csv:"route_id"`
	Headsign  string `csv:"trip_headsign"`
	ShortName string `csv:"trip_short_name"`
}

// Parses trips.txt into a map from trip_id to TripInfo. Headsign and
// short name are optional.
func ParseTrips(data io.Reader) (map[string]model.TripInfo, error) {
	tripCsv := []*TripCSV{}
	ok, err := readTable(data, &tripCsv, "trip_id", "route_id")
	if err != nil {
		return nil, errors.Wrap(err, "unmarshaling trips csv")
	}

	trips := map[string]model.TripInfo{}
	if !ok {
		return trips, nil
	}

	for _, t := range tripCsv {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			continue
		}
		trips[id] = model.TripInfo{
			TripID:    id,
			RouteID:   strings.TrimSpace(t.RouteID),
			Headsign:  strings.TrimSpace(t.Headsign),
			ShortName: strings.TrimSpace(t.ShortName),
		}
	}

	return trips, nil
}

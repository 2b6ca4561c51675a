package parse

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"

	"tidbyt.dev/tram/model"
)

// The static tables needed to resolve realtime arrivals.
type StaticTables struct {
	Stations      []model.Station
	ChildToParent map[string]string
	RouteNames    map[string]string
	Trips         map[string]model.TripInfo
}

// Parses a static GTFS zip archive. Only stops.txt, routes.txt and
// trips.txt are read. stops.txt is required, while missing routes or
// trips simply result in empty tables.
func ParseStatic(buf []byte) (*StaticTables, error) {
	file := map[string]io.ReadCloser{
		"stops.txt":  nil,
		"routes.txt": nil,
		"trips.txt":  nil,
	}

	defer func() {
		for _, rc := range file {
			if rc != nil {
				rc.Close()
			}
		}
	}()

	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, errors.Wrap(err, "unzipping")
	}

	for _, f := range r.File {
		// There should not be any subdirectories. But, some
		// agencies don't care.
		if f.FileInfo().IsDir() {
			continue
		}
		path := strings.Split(f.Name, "/")
		fName := path[len(path)-1]

		if rc, found := file[fName]; !found || rc != nil {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", f.Name)
		}

		file[fName] = rc
	}

	if file["stops.txt"] == nil {
		return nil, errors.New("missing stops.txt")
	}

	tables := &StaticTables{
		RouteNames: map[string]string{},
		Trips:      map[string]model.TripInfo{},
	}

	tables.Stations, tables.ChildToParent, err = ParseStops(file["stops.txt"])
	if err != nil {
		return nil, errors.Wrap(err, "parsing stops.txt")
	}

	if file["routes.txt"] != nil {
		tables.RouteNames, err = ParseRoutes(file["routes.txt"])
		if err != nil {
			return nil, errors.Wrap(err, "parsing routes.txt")
		}
	}

	if file["trips.txt"] != nil {
		tables.Trips, err = ParseTrips(file["trips.txt"])
		if err != nil {
			return nil, errors.Wrap(err, "parsing trips.txt")
		}
	}

	return tables, nil
}

package parse

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

type RouteCSV struct {
	ID        string `csv:"route_id"`
	ShortName string `csv:"route_short_name"`
}

// Parses routes.txt into a map from route_id to short name. Routes
// without a short name are left out, so that lookups fall back to the
// route_id.
func ParseRoutes(data io.Reader) (map[string]string, error) {
	routeCsv := []*RouteCSV{}
	ok, err := readTable(data, &routeCsv, "route_id", "route_short_name")
	if err != nil {
		return nil, errors.Wrap(err, "unmarshaling routes csv")
	}

	routes := map[string]string{}
	if !ok {
		return routes, nil
	}

	for _, r := range routeCsv {
		id := strings.TrimSpace(r.ID)
		name := strings.TrimSpace(r.ShortName)
		if id == "" || name == "" {
			continue
		}
		routes[id] = name
	}

	return routes, nil
}

package testutil

// Helpers for building synthetic static and realtime feeds in tests.

import (
	"bytes"
	"strings"
	"testing"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
	proto "google.golang.org/protobuf/proto"
)

func BuildZip(
	t testing.TB,
	files map[string][]string,
) []byte {

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// Encodes a GTFS-rt feed holding the given entities.
func BuildFeed(t testing.TB, timestamp uint64, entities ...*gtfsproto.FeedEntity) []byte {
	data, err := proto.Marshal(&gtfsproto.FeedMessage{
		Header: &gtfsproto.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsproto.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(timestamp),
		},
		Entity: entities,
	})
	require.NoError(t, err)
	return data
}

// A trip update entity. The entity ID is the trip ID.
func TripUpdate(
	tripID string,
	routeID string,
	updates ...*gtfsproto.TripUpdate_StopTimeUpdate,
) *gtfsproto.FeedEntity {

	return &gtfsproto.FeedEntity{
		Id: proto.String(tripID),
		TripUpdate: &gtfsproto.TripUpdate{
			Trip: &gtfsproto.TripDescriptor{
				TripId:  proto.String(tripID),
				RouteId: proto.String(routeID),
			},
			StopTimeUpdate: updates,
		},
	}
}

// A stop time update. Arrival and departure are unix times, with 0
// meaning unset.
func StopTimeUpdate(stopID string, arrival int64, departure int64) *gtfsproto.TripUpdate_StopTimeUpdate {
	stu := &gtfsproto.TripUpdate_StopTimeUpdate{
		StopId: proto.String(stopID),
	}
	if arrival != 0 {
		stu.Arrival = &gtfsproto.TripUpdate_StopTimeEvent{Time: proto.Int64(arrival)}
	}
	if departure != 0 {
		stu.Departure = &gtfsproto.TripUpdate_StopTimeEvent{Time: proto.Int64(departure)}
	}
	return stu
}

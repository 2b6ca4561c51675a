package parse

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// Decoder for the parts of GTFS Realtime we care about: trip
// updates, their trip descriptors and their stop time updates.
//
// This works directly on the protobuf wire format. Every message
// parser receives exactly the bytes of its own length-delimited
// region and must consume all of them. Fields not modelled below are
// skipped according to their wire type, which keeps us working when
// producers add (extension) fields. Vehicle positions and alerts are
// among the skipped.

var (
	ErrTruncated = errors.New("truncated feed")
	ErrOverrun   = errors.New("length overruns feed")
	ErrMalformed = errors.New("malformed feed")
)

type TripScheduleRelationship int32

const (
	TripScheduled   TripScheduleRelationship = 0
	TripAdded       TripScheduleRelationship = 1
	TripUnscheduled TripScheduleRelationship = 2
	TripCanceled    TripScheduleRelationship = 3
	TripReplacement TripScheduleRelationship = 5
	TripDuplicated  TripScheduleRelationship = 6
	TripDeleted     TripScheduleRelationship = 7
)

type StopTimeUpdateScheduleRelationship int32

const (
	StopTimeUpdateScheduled   StopTimeUpdateScheduleRelationship = 0
	StopTimeUpdateSkipped     StopTimeUpdateScheduleRelationship = 1
	StopTimeUpdateNoData      StopTimeUpdateScheduleRelationship = 2
	StopTimeUpdateUnscheduled StopTimeUpdateScheduleRelationship = 3
)

// One decoded realtime snapshot.
type FeedMessage struct {
	Header   FeedHeader
	Entities []*FeedEntity
}

type FeedHeader struct {
	Timestamp uint64
}

// TripUpdate is nil for entities carrying something else.
type FeedEntity struct {
	ID         string
	TripUpdate *TripUpdate
}

type TripUpdate struct {
	Trip            TripDescriptor
	StopTimeUpdates []*StopTimeUpdate
}

type TripDescriptor struct {
	TripID               string
	RouteID              string
	ScheduleRelationship TripScheduleRelationship
}

// ArrivalTime and DepartureTime are unix epoch seconds, nil when the
// feed carries no time for the event.
type StopTimeUpdate struct {
	StopSequence         uint32
	StopID               string
	ArrivalTime          *int64
	DepartureTime        *int64
	ScheduleRelationship StopTimeUpdateScheduleRelationship
}

// Returns arrival time if present, else departure time.
func (u *StopTimeUpdate) EventTime() (int64, bool) {
	if u.ArrivalTime != nil {
		return *u.ArrivalTime, true
	}
	if u.DepartureTime != nil {
		return *u.DepartureTime, true
	}
	return 0, false
}

// Field numbers, per gtfs-realtime.proto.
const (
	feedMessageHeader = 1
	feedMessageEntity = 2

	feedHeaderLegacyTimestamp = 2
	feedHeaderTimestamp       = 3

	feedEntityID         = 1
	feedEntityTripUpdate = 3

	tripUpdateTrip           = 1
	tripUpdateStopTimeUpdate = 2

	tripDescriptorTripID               = 1
	tripDescriptorScheduleRelationship = 4
	tripDescriptorRouteID              = 5

	stopTimeUpdateStopSequence         = 1
	stopTimeUpdateArrival              = 2
	stopTimeUpdateDeparture            = 3
	stopTimeUpdateStopID               = 4
	stopTimeUpdateScheduleRelationship = 5

	stopTimeEventTime = 2
)

// Decodes a GTFS Realtime FeedMessage. Any structural corruption
// fails the whole parse.
func ParseRealtime(buf []byte) (*FeedMessage, error) {
	msg, err := parseFeedMessage(buf)
	if err != nil {
		return nil, fmt.Errorf("decoding feed message: %w", err)
	}
	return msg, nil
}

func parseFeedMessage(b []byte) (*FeedMessage, error) {
	msg := &FeedMessage{}

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == feedMessageHeader && typ == protowire.BytesType:
			header, n, err := nested(b, parseFeedHeader)
			if err != nil {
				return 0, fmt.Errorf("header: %w", err)
			}
			msg.Header = header
			return n, nil

		case num == feedMessageEntity && typ == protowire.BytesType:
			entity, n, err := nested(b, parseFeedEntity)
			if err != nil {
				return 0, fmt.Errorf("entity %d: %w", len(msg.Entities), err)
			}
			msg.Entities = append(msg.Entities, entity)
			return n, nil
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// The timestamp is field 3 in gtfs-realtime.proto, where field 2 is
// incrementality. Feeds produced against the older layout carry the
// timestamp in field 2, so that is read as well. Field 3 wins when
// both are present.
func parseFeedHeader(b []byte) (FeedHeader, error) {
	header := FeedHeader{}
	var legacy uint64
	found := false

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return 0, nil
		}
		switch num {
		case feedHeaderTimestamp:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, fmt.Errorf("timestamp: %w", err)
			}
			header.Timestamp = v
			found = true
			return n, nil

		case feedHeaderLegacyTimestamp:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, fmt.Errorf("timestamp: %w", err)
			}
			legacy = v
			return n, nil
		}
		return 0, nil
	})
	if err != nil {
		return header, err
	}

	if !found {
		header.Timestamp = legacy
	}

	return header, nil
}

func parseFeedEntity(b []byte) (*FeedEntity, error) {
	entity := &FeedEntity{}

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == feedEntityID && typ == protowire.BytesType:
			id, n, err := consumeString(b)
			if err != nil {
				return 0, fmt.Errorf("id: %w", err)
			}
			entity.ID = id
			return n, nil

		case num == feedEntityTripUpdate && typ == protowire.BytesType:
			tu, n, err := nested(b, parseTripUpdate)
			if err != nil {
				return 0, fmt.Errorf("trip_update: %w", err)
			}
			entity.TripUpdate = tu
			return n, nil
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

func parseTripUpdate(b []byte) (*TripUpdate, error) {
	tu := &TripUpdate{}

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == tripUpdateTrip && typ == protowire.BytesType:
			trip, n, err := nested(b, parseTripDescriptor)
			if err != nil {
				return 0, fmt.Errorf("trip: %w", err)
			}
			tu.Trip = trip
			return n, nil

		case num == tripUpdateStopTimeUpdate && typ == protowire.BytesType:
			stu, n, err := nested(b, parseStopTimeUpdate)
			if err != nil {
				return 0, fmt.Errorf("stop_time_update %d: %w", len(tu.StopTimeUpdates), err)
			}
			tu.StopTimeUpdates = append(tu.StopTimeUpdates, stu)
			return n, nil
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}

	return tu, nil
}

func parseTripDescriptor(b []byte) (TripDescriptor, error) {
	trip := TripDescriptor{}

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == tripDescriptorTripID && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, fmt.Errorf("trip_id: %w", err)
			}
			trip.TripID = s
			return n, nil

		case num == tripDescriptorRouteID && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, fmt.Errorf("route_id: %w", err)
			}
			trip.RouteID = s
			return n, nil

		case num == tripDescriptorScheduleRelationship && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, fmt.Errorf("schedule_relationship: %w", err)
			}
			trip.ScheduleRelationship = TripScheduleRelationship(int32(v))
			return n, nil
		}
		return 0, nil
	})

	return trip, err
}

func parseStopTimeUpdate(b []byte) (*StopTimeUpdate, error) {
	stu := &StopTimeUpdate{}

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == stopTimeUpdateStopSequence && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, fmt.Errorf("stop_sequence: %w", err)
			}
			stu.StopSequence = uint32(v)
			return n, nil

		case num == stopTimeUpdateStopID && typ == protowire.BytesType:
			s, n, err := consumeString(b)
			if err != nil {
				return 0, fmt.Errorf("stop_id: %w", err)
			}
			stu.StopID = s
			return n, nil

		case num == stopTimeUpdateArrival && typ == protowire.BytesType:
			t, n, err := nested(b, parseStopTimeEvent)
			if err != nil {
				return 0, fmt.Errorf("arrival: %w", err)
			}
			stu.ArrivalTime = t
			return n, nil

		case num == stopTimeUpdateDeparture && typ == protowire.BytesType:
			t, n, err := nested(b, parseStopTimeEvent)
			if err != nil {
				return 0, fmt.Errorf("departure: %w", err)
			}
			stu.DepartureTime = t
			return n, nil

		case num == stopTimeUpdateScheduleRelationship && typ == protowire.VarintType:
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, fmt.Errorf("schedule_relationship: %w", err)
			}
			stu.ScheduleRelationship = StopTimeUpdateScheduleRelationship(int32(v))
			return n, nil
		}
		return 0, nil
	})
	if err != nil {
		return nil, err
	}

	return stu, nil
}

// Returns the event's time, or nil if it has none.
func parseStopTimeEvent(b []byte) (*int64, error) {
	var t *int64

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == stopTimeEventTime && typ == protowire.VarintType {
			v, n, err := consumeVarint(b)
			if err != nil {
				return 0, fmt.Errorf("time: %w", err)
			}
			// int64 on the wire is plain two's complement,
			// not zigzag.
			ts := int64(v)
			t = &ts
			return n, nil
		}
		return 0, nil
	})

	return t, err
}

// Walks all fields in a message region. For each field, fn is given
// the bytes following the tag and returns how many of them it
// consumed. Returning 0 means fn doesn't know the field, in which
// case it is skipped. The region must be consumed exactly.
func walk(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n == 0 {
			n, err = skipField(num, typ, b)
			if err != nil {
				return fmt.Errorf("skipping field %d: %w", num, err)
			}
		}
		b = b[n:]
	}
	return nil
}

// Reads a length prefix and parses exactly that many bytes with
// parse. Returns the number of bytes consumed, prefix included.
func nested[T any](b []byte, parse func([]byte) (T, error)) (T, int, error) {
	var zero T

	region, n, err := consumeRegion(b)
	if err != nil {
		return zero, 0, err
	}

	v, err := parse(region)
	if err != nil {
		return zero, 0, err
	}

	return v, n, nil
}

func consumeRegion(b []byte) ([]byte, int, error) {
	length, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return nil, 0, wireError(n)
	}
	if length > uint64(len(b)-n) {
		return nil, 0, fmt.Errorf("%w: %d byte field with %d bytes left", ErrOverrun, length, len(b)-n)
	}
	end := n + int(length)
	return b[n:end], end, nil
}

func consumeString(b []byte) (string, int, error) {
	region, n, err := consumeRegion(b)
	if err != nil {
		return "", 0, err
	}
	return string(region), n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, wireError(n)
	}
	return v, n, nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if typ == protowire.BytesType {
		_, n, err := consumeRegion(b)
		return n, err
	}
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, wireError(n)
	}
	return n, nil
}

func wireError(n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

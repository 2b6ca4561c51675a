package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tidbyt.dev/tram/model"
)

func threeStops() Config {
	return Config{
		Stops: []StopConfig{
			{StationID: "a", StationName: "Alpha"},
			{StationID: "b", StationName: "Bravo"},
			{StationID: "c", StationName: "Charlie"},
		},
	}
}

func TestNextPrevWrap(t *testing.T) {
	cfg := threeStops()
	cfg.CurrentIndex = 2

	cfg.Next()
	assert.Equal(t, 0, cfg.CurrentIndex)
	cfg.Next()
	assert.Equal(t, 1, cfg.CurrentIndex)

	cfg.CurrentIndex = 0
	cfg.Prev()
	assert.Equal(t, 2, cfg.CurrentIndex)
	cfg.Prev()
	assert.Equal(t, 1, cfg.CurrentIndex)
}

func TestNextPrevEmpty(t *testing.T) {
	cfg := Config{}
	cfg.Next()
	assert.Equal(t, 0, cfg.CurrentIndex)
	cfg.Prev()
	assert.Equal(t, 0, cfg.CurrentIndex)

	// Even from a bogus index
	cfg.CurrentIndex = 5
	cfg.Prev()
	assert.Equal(t, 0, cfg.CurrentIndex)
}

func TestSetIndex(t *testing.T) {
	for _, tc := range []struct {
		stops    int
		index    int
		expected int
	}{
		{3, 0, 0},
		{3, 2, 2},
		{3, 3, 2},
		{3, 100, 2},
		{3, -1, 0},
		{0, 0, 0},
		{0, 4, 0},
		{1, 1, 0},
	} {
		cfg := threeStops()
		cfg.Stops = cfg.Stops[:tc.stops]
		cfg.SetIndex(tc.index)
		assert.Equal(t, tc.expected, cfg.CurrentIndex, "stops=%d index=%d", tc.stops, tc.index)
	}
}

func TestAddStop(t *testing.T) {
	cfg := Config{}
	cfg.AddStop(StopConfig{StationID: "a"})
	assert.Equal(t, 0, cfg.CurrentIndex)
	assert.Equal(t, 1, len(cfg.Stops))

	cfg.AddStop(StopConfig{StationID: "b"})
	cfg.Next()
	cfg.AddStop(StopConfig{StationID: "c"})

	// Index unaffected by appends
	assert.Equal(t, 1, cfg.CurrentIndex)
	assert.Equal(t, "c", cfg.Stops[2].StationID)

	// An invalid index is reset
	cfg.CurrentIndex = 7
	cfg.AddStop(StopConfig{StationID: "d"})
	assert.Equal(t, 0, cfg.CurrentIndex)
}

func TestRemoveStop(t *testing.T) {
	cfg := threeStops()
	cfg.CurrentIndex = 2

	assert.False(t, cfg.RemoveStop(3))
	assert.False(t, cfg.RemoveStop(-1))

	// Current stop stays current
	assert.True(t, cfg.RemoveStop(0))
	assert.Equal(t, 1, cfg.CurrentIndex)
	current, ok := cfg.Current()
	assert.True(t, ok)
	assert.Equal(t, "c", current.StationID)

	// Removing the current, last, stop moves back
	assert.True(t, cfg.RemoveStop(1))
	assert.Equal(t, 0, cfg.CurrentIndex)
	current, ok = cfg.Current()
	assert.True(t, ok)
	assert.Equal(t, "b", current.StationID)

	assert.True(t, cfg.RemoveStop(0))
	assert.Equal(t, 0, cfg.CurrentIndex)
	_, ok = cfg.Current()
	assert.False(t, ok)
}

func TestRemoveStopDoesNotAlias(t *testing.T) {
	cfg := threeStops()
	original := cfg.Stops

	cfg.RemoveStop(0)
	assert.Equal(t, "a", original[0].StationID)
	assert.Equal(t, "b", original[1].StationID)
}

func TestCurrentClamps(t *testing.T) {
	cfg := threeStops()
	cfg.CurrentIndex = 10

	current, ok := cfg.Current()
	assert.True(t, ok)
	assert.Equal(t, "c", current.StationID)
	assert.Equal(t, 2, cfg.CurrentIndex)
}

func TestEncodeDecode(t *testing.T) {
	cfg := Config{
		CurrentIndex: 1,
		Stops: []StopConfig{
			{StationID: "a", StationName: "Alpha"},
			{StationID: "b", StationName: "Bravo", Filter: model.WidgetFilter{Line: "T1"}},
		},
	}

	data, err := EncodeConfig(cfg)
	assert.NoError(t, err)
	assert.JSONEq(t, `{
  "currentIndex": 1,
  "stops": [
    {"stationId": "a", "stationName": "Alpha", "filterLine": null, "filterDirection": null},
    {"stationId": "b", "stationName": "Bravo", "filterLine": "T1", "filterDirection": null}
  ]
}`, data)

	decoded, err := DecodeConfig(data)
	assert.NoError(t, err)
	assert.Equal(t, cfg, decoded)

	data, err = EncodeConfig(Config{})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"currentIndex": 0, "stops": []}`, data)
}

func TestDecodeClamps(t *testing.T) {
	cfg, err := DecodeConfig(`{"currentIndex": 9, "stops": [{"stationId": "a", "stationName": "Alpha"}]}`)
	assert.NoError(t, err)
	assert.Equal(t, 0, cfg.CurrentIndex)

	cfg, err = DecodeConfig(`{"currentIndex": 9}`)
	assert.NoError(t, err)
	assert.Equal(t, 0, cfg.CurrentIndex)
	assert.Equal(t, 0, len(cfg.Stops))
}

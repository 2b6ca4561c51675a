// Package widget holds per-widget configuration: the ordered list of
// stops a widget cycles through, and which one is showing.
package widget

import (
	"tidbyt.dev/tram/model"
)

type StopConfig struct {
	StationID   string
	StationName string
	Filter      model.WidgetFilter
}

// CurrentIndex is kept in [0, len(Stops)-1], or 0 when there are no
// stops.
type Config struct {
	CurrentIndex int
	Stops        []StopConfig
}

func (c *Config) Next() {
	if len(c.Stops) == 0 {
		c.CurrentIndex = 0
		return
	}
	c.CurrentIndex = (c.CurrentIndex + 1) % len(c.Stops)
}

func (c *Config) Prev() {
	if len(c.Stops) == 0 {
		c.CurrentIndex = 0
		return
	}
	c.CurrentIndex = (c.CurrentIndex - 1 + len(c.Stops)) % len(c.Stops)
}

func (c *Config) SetIndex(i int) {
	c.CurrentIndex = i
	c.Clamp()
}

// Appends a stop. The index only moves if it was invalid.
func (c *Config) AddStop(s StopConfig) {
	if c.CurrentIndex < 0 || c.CurrentIndex >= len(c.Stops) {
		c.CurrentIndex = 0
	}
	c.Stops = append(c.Stops, s)
}

// Removes the stop at i. Returns false if there is no such stop.
// Removing a stop before the current one keeps the same stop
// current.
func (c *Config) RemoveStop(i int) bool {
	if i < 0 || i >= len(c.Stops) {
		return false
	}
	c.Stops = append(c.Stops[:i:i], c.Stops[i+1:]...)
	if i < c.CurrentIndex {
		c.CurrentIndex--
	}
	c.Clamp()
	return true
}

func (c *Config) Current() (StopConfig, bool) {
	if len(c.Stops) == 0 {
		return StopConfig{}, false
	}
	c.Clamp()
	return c.Stops[c.CurrentIndex], true
}

func (c *Config) Clamp() {
	if len(c.Stops) == 0 || c.CurrentIndex < 0 {
		c.CurrentIndex = 0
		return
	}
	if c.CurrentIndex >= len(c.Stops) {
		c.CurrentIndex = len(c.Stops) - 1
	}
}

package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/storage"
)

var ErrNoSuchStop = errors.New("no such stop")

const (
	configKeyPrefix = "widget_config_"

	// Single stop layout, from before widgets could hold several
	// stops.
	legacyStationIDPrefix       = "station_id_"
	legacyStationNamePrefix     = "station_name_"
	legacyFilterLinePrefix      = "filter_line_"
	legacyFilterDirectionPrefix = "filter_direction_"
)

func ConfigKey(widgetID string) string {
	return configKeyPrefix + widgetID
}

func legacyKeys(widgetID string) []string {
	return []string{
		legacyStationIDPrefix + widgetID,
		legacyStationNamePrefix + widgetID,
		legacyFilterLinePrefix + widgetID,
		legacyFilterDirectionPrefix + widgetID,
	}
}

// Persisted shape. Unset filter fields are null.
type stopJSON struct {
	StationID       string  `json:"stationId"`
	StationName     string  `json:"stationName"`
	FilterLine      *string `json:"filterLine"`
	FilterDirection *string `json:"filterDirection"`
}

type configJSON struct {
	CurrentIndex int        `json:"currentIndex"`
	Stops        []stopJSON `json:"stops"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func EncodeConfig(cfg Config) (string, error) {
	blob := configJSON{
		CurrentIndex: cfg.CurrentIndex,
		Stops:        []stopJSON{},
	}
	for _, s := range cfg.Stops {
		blob.Stops = append(blob.Stops, stopJSON{
			StationID:       s.StationID,
			StationName:     s.StationName,
			FilterLine:      nullable(s.Filter.Line),
			FilterDirection: nullable(s.Filter.Direction),
		})
	}

	buf, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("marshaling: %w", err)
	}
	return string(buf), nil
}

// Decodes a persisted config. The index is clamped.
func DecodeConfig(data string) (Config, error) {
	blob := configJSON{}
	err := json.Unmarshal([]byte(data), &blob)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshaling: %w", err)
	}

	cfg := Config{CurrentIndex: blob.CurrentIndex}
	for _, s := range blob.Stops {
		cfg.Stops = append(cfg.Stops, StopConfig{
			StationID:   s.StationID,
			StationName: s.StationName,
			Filter: model.WidgetFilter{
				Line:      deref(s.FilterLine),
				Direction: deref(s.FilterDirection),
			},
		})
	}
	cfg.Clamp()

	return cfg, nil
}

// Reads and writes widget configs in preference storage. Every
// mutation loads the config, applies the change and persists the
// whole thing.
//
// Concurrent mutations of the same widget are last-write-wins.
type Store struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewStore(s storage.Storage) *Store {
	return &Store{
		storage: s,
		logger:  slog.Default().With(slog.String("component", "widget_store")),
	}
}

// Loads the config for a widget. Unknown widgets and malformed
// configs get an empty config. Legacy single stop configs are
// upgraded and persisted in the current layout.
func (s *Store) Load(widgetID string) (Config, error) {
	data, found, err := s.storage.Get(ConfigKey(widgetID))
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if !found {
		return s.upgradeLegacy(widgetID)
	}

	cfg, err := DecodeConfig(data)
	if err != nil {
		s.logger.Warn(
			"malformed widget config, using empty default",
			slog.String("widget_id", widgetID),
			slog.Any("error", err),
		)
		return Config{}, nil
	}

	return cfg, nil
}

func (s *Store) upgradeLegacy(widgetID string) (Config, error) {
	values := []string{}
	for _, key := range legacyKeys(widgetID) {
		value, _, err := s.storage.Get(key)
		if err != nil {
			return Config{}, fmt.Errorf("reading legacy config: %w", err)
		}
		values = append(values, value)
	}

	if values[0] == "" {
		return Config{}, nil
	}

	cfg := Config{
		Stops: []StopConfig{{
			StationID:   values[0],
			StationName: values[1],
			Filter: model.WidgetFilter{
				Line:      values[2],
				Direction: values[3],
			},
		}},
	}

	err := s.Save(widgetID, cfg)
	if err != nil {
		return Config{}, fmt.Errorf("persisting upgraded config: %w", err)
	}

	err = s.storage.Delete(legacyKeys(widgetID)...)
	if err != nil {
		return Config{}, fmt.Errorf("deleting legacy config: %w", err)
	}

	s.logger.Info(
		"upgraded legacy widget config",
		slog.String("widget_id", widgetID),
		slog.String("station_id", values[0]),
	)

	return cfg, nil
}

// Persists the full config. The index is clamped first.
func (s *Store) Save(widgetID string, cfg Config) error {
	cfg.Clamp()

	data, err := EncodeConfig(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = s.storage.Set(ConfigKey(widgetID), data)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func (s *Store) update(widgetID string, mutate func(cfg *Config) error) (Config, error) {
	cfg, err := s.Load(widgetID)
	if err != nil {
		return Config{}, err
	}

	err = mutate(&cfg)
	if err != nil {
		return Config{}, err
	}
	cfg.Clamp()

	err = s.Save(widgetID, cfg)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (s *Store) Next(widgetID string) (Config, error) {
	return s.update(widgetID, func(cfg *Config) error {
		cfg.Next()
		return nil
	})
}

func (s *Store) Prev(widgetID string) (Config, error) {
	return s.update(widgetID, func(cfg *Config) error {
		cfg.Prev()
		return nil
	})
}

func (s *Store) SetIndex(widgetID string, i int) (Config, error) {
	return s.update(widgetID, func(cfg *Config) error {
		cfg.SetIndex(i)
		return nil
	})
}

func (s *Store) AddStop(widgetID string, stop StopConfig) (Config, error) {
	return s.update(widgetID, func(cfg *Config) error {
		cfg.AddStop(stop)
		return nil
	})
}

func (s *Store) RemoveStop(widgetID string, i int) (Config, error) {
	return s.update(widgetID, func(cfg *Config) error {
		if !cfg.RemoveStop(i) {
			return fmt.Errorf("%w: %d", ErrNoSuchStop, i)
		}
		return nil
	})
}

// Removes everything stored for a widget, legacy keys included.
func (s *Store) Delete(widgetID string) error {
	keys := append([]string{ConfigKey(widgetID)}, legacyKeys(widgetID)...)
	err := s.storage.Delete(keys...)
	if err != nil {
		return fmt.Errorf("deleting config: %w", err)
	}
	return nil
}

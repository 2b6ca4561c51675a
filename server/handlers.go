package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"tidbyt.dev/tram"
	"tidbyt.dev/tram/model"
	"tidbyt.dev/tram/widget"
)

type HealthStatus struct {
	Status       string `json:"status"`
	Environment  string `json:"environment"`
	StaticLoaded bool   `json:"static_loaded"`
}

type StationResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

type StationsResponse struct {
	Stations []StationResponse `json:"stations"`
	Fallback bool              `json:"fallback"`
}

type ArrivalResponse struct {
	Line                string `json:"line"`
	Destination         string `json:"destination"`
	Time                string `json:"time"`
	MinutesUntilArrival int    `json:"minutesUntilArrival"`
}

type ArrivalsResponse struct {
	Arrivals []ArrivalResponse `json:"arrivals"`
	Fallback bool              `json:"fallback"`
	Error    string            `json:"error,omitempty"`
}

type LineResponse struct {
	Line        string `json:"line"`
	Destination string `json:"destination"`
}

type DisplayResponse struct {
	StationName string            `json:"stationName"`
	Position    string            `json:"position"`
	Next        string            `json:"next"`
	Alternate   string            `json:"alternate"`
	Arrivals    []ArrivalResponse `json:"arrivals"`
	Fallback    bool              `json:"fallback"`
	Error       bool              `json:"error"`
	Message     string            `json:"message"`
	Hint        string            `json:"hint"`
}

type AddStopRequest struct {
	StationID       string  `json:"stationId"`
	StationName     string  `json:"stationName"`
	FilterLine      *string `json:"filterLine"`
	FilterDirection *string `json:"filterDirection"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		s.Logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func arrivalResponses(arrivals []model.TramArrival) []ArrivalResponse {
	resp := []ArrivalResponse{}
	for _, a := range arrivals {
		resp = append(resp, ArrivalResponse{
			Line:                a.Line,
			Destination:         a.Destination,
			Time:                a.Time,
			MinutesUntilArrival: a.MinutesUntilArrival,
		})
	}
	return resp
}

func displayResponse(d tram.Display) DisplayResponse {
	return DisplayResponse{
		StationName: d.StationName,
		Position:    d.Position,
		Next:        d.Next,
		Alternate:   d.Alternate,
		Arrivals:    arrivalResponses(d.Arrivals),
		Fallback:    d.Fallback,
		Error:       d.Error,
		Message:     d.Message,
		Hint:        d.Hint,
	}
}

func (s *Server) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthStatus{
		Status:       "available",
		Environment:  s.Environment,
		StaticLoaded: s.Manager.StaticLoaded(),
	})
}

func (s *Server) stationsHandler(w http.ResponseWriter, r *http.Request) {
	stations, fallback := s.Manager.Stations(r.Context())

	resp := StationsResponse{
		Stations: []StationResponse{},
		Fallback: fallback,
	}
	for _, st := range stations {
		lines := st.Lines
		if lines == nil {
			lines = []string{}
		}
		resp.Stations = append(resp.Stations, StationResponse{
			ID:    st.ID,
			Name:  st.Name,
			Lines: lines,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) arrivalsHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filter := model.WidgetFilter{
		Line:      r.URL.Query().Get("line"),
		Direction: r.URL.Query().Get("direction"),
	}

	arrivals := s.Manager.Arrivals(r.Context(), ps.ByName("id"), filter)

	resp := ArrivalsResponse{
		Arrivals: arrivalResponses(arrivals.List),
		Fallback: arrivals.Fallback,
	}
	if arrivals.Err != nil {
		resp.Error = arrivals.Err.Error()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) linesHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resp := []LineResponse{}
	for _, ld := range s.Manager.AvailableLines(r.Context(), ps.ByName("id")) {
		resp = append(resp, LineResponse{Line: ld.Line, Destination: ld.Destination})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Writes the config in its persisted JSON form.
func (s *Server) writeConfig(w http.ResponseWriter, cfg widget.Config) {
	data, err := widget.EncodeConfig(cfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, data)
}

func (s *Server) widgetHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cfg, err := s.Widgets.Load(ps.ByName("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeConfig(w, cfg)
}

func (s *Server) deleteWidgetHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := s.Widgets.Delete(ps.ByName("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request, widgetID string) {
	display := s.Refresher.Refresh(r.Context(), widgetID)
	s.writeJSON(w, http.StatusOK, displayResponse(display))
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.refresh(w, r, ps.ByName("id"))
}

func (s *Server) nextHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, err := s.Widgets.Next(ps.ByName("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.refresh(w, r, ps.ByName("id"))
}

func (s *Server) prevHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, err := s.Widgets.Prev(ps.ByName("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.refresh(w, r, ps.ByName("id"))
}

func (s *Server) addStopHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req := AddStopRequest{}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.StationID == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("stationId is required"))
		return
	}

	stop := widget.StopConfig{
		StationID:   req.StationID,
		StationName: req.StationName,
	}
	if req.FilterLine != nil {
		stop.Filter.Line = *req.FilterLine
	}
	if req.FilterDirection != nil {
		stop.Filter.Direction = *req.FilterDirection
	}

	_, err = s.Widgets.AddStop(ps.ByName("id"), stop)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.refresh(w, r, ps.ByName("id"))
}

func (s *Server) removeStopHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	index, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg, err := s.Widgets.RemoveStop(ps.ByName("id"), index)
	if errors.Is(err, widget.ErrNoSuchStop) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeConfig(w, cfg)
}

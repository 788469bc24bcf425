// Package api exposes the metronome's configuration and transport over
// HTTP/JSON.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/satindergrewal/metronome/internal/tempo"
	"github.com/satindergrewal/metronome/internal/timer"
	"github.com/satindergrewal/metronome/internal/transport"
)

// API serves the /api/ endpoints for one metronome.
type API struct {
	m *transport.Metronome

	// Listeners, if set, reports connected stream clients for /api/status.
	Listeners func() map[string]int
}

// New creates the API for m.
func New(m *transport.Metronome) *API {
	return &API{m: m}
}

// Register adds every endpoint to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", a.status)
	mux.HandleFunc("/api/bpm", post(a.bpm))
	mux.HandleFunc("/api/nudge", post(a.nudge))
	mux.HandleFunc("/api/beats", post(a.beats))
	mux.HandleFunc("/api/subdivision", post(a.subdivision))
	mux.HandleFunc("/api/accent", post(a.accent))
	mux.HandleFunc("/api/transport", post(a.transport))
	mux.HandleFunc("/api/tap", post(a.tap))
	mux.HandleFunc("/api/timer", post(a.timer))
	mux.HandleFunc("/api/visibility", post(a.visibility))
	mux.HandleFunc("/api/theme", post(a.theme))
}

// Handler returns a mux with only the API registered.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.Register(mux)
	return mux
}

type statusResponse struct {
	transport.Status
	Listeners map[string]int `json:"listeners,omitempty"`
}

type okResponse struct {
	OK     bool             `json:"ok"`
	Status transport.Status `json:"status"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(v)
}

func (a *API) ok(w http.ResponseWriter) {
	writeJSON(w, okResponse{OK: true, Status: a.m.Status()})
}

// post wraps a handler that only accepts POST.
func post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}

// decode reads an optional JSON body into v. An empty body leaves v as is.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func (a *API) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: a.m.Status()}
	if a.Listeners != nil {
		resp.Listeners = a.Listeners()
	}
	writeJSON(w, resp)
}

func (a *API) bpm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BPM  *float64 `json:"bpm"`
		Text *string  `json:"text"` // typed input, blank keeps the current tempo
		Fine bool     `json:"fine"`
	}
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.Text != nil:
		a.m.SetBpmString(*req.Text)
	case req.BPM != nil && req.Fine:
		a.m.SetBpmFine(*req.BPM)
	case req.BPM != nil:
		a.m.SetBpm(*req.BPM)
	default:
		http.Error(w, "bpm or text required", http.StatusBadRequest)
		return
	}
	a.ok(w)
}

func (a *API) nudge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		http.Error(w, "delta required", http.StatusBadRequest)
		return
	}
	a.m.NudgeBpm(req.Delta)
	a.ok(w)
}

func (a *API) beats(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Beats *int `json:"beats"`
		Step  int  `json:"step"` // ±1 from the current bar length
	}
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.Beats != nil:
		a.m.SetBeatsPerBar(*req.Beats)
	case req.Step != 0:
		a.m.SetBeatsPerBar(a.m.BeatsPerBar() + req.Step)
	default:
		http.Error(w, "beats or step required", http.StatusBadRequest)
		return
	}
	a.ok(w)
}

func (a *API) subdivision(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Mode == "next" {
		a.m.CycleSubdivision()
		a.ok(w)
		return
	}
	sub, ok := tempo.ParseSubdivision(req.Mode)
	if !ok {
		http.Error(w, "unknown mode", http.StatusBadRequest)
		return
	}
	a.m.SetSubdivision(sub)
	a.ok(w)
}

func (a *API) accent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decode(w, r, &req) {
		return
	}
	a.m.SetAccent(req.Enabled)
	a.ok(w)
}

func (a *API) transport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if !decode(w, r, &req) {
		return
	}
	switch req.Action {
	case "start":
		a.m.Start()
	case "stop":
		a.m.Stop()
	case "toggle", "":
		a.m.Toggle()
	case "reset":
		a.m.Reset()
	default:
		http.Error(w, "action must be start, stop, toggle or reset", http.StatusBadRequest)
		return
	}
	a.ok(w)
}

func (a *API) tap(w http.ResponseWriter, r *http.Request) {
	a.m.Unlock()
	bpm, applied := a.m.Tap()
	writeJSON(w, map[string]any{"ok": true, "bpm": bpm, "applied": applied})
}

func (a *API) timer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetMs *int64 `json:"target_ms"`
		Step     int    `json:"step"`
	}
	if !decode(w, r, &req) {
		return
	}
	switch {
	case req.TargetMs != nil:
		a.m.SetTimerTarget(timer.Millis(*req.TargetMs))
	case req.Step != 0:
		a.m.StepTimer(req.Step)
	default:
		http.Error(w, "target_ms or step required", http.StatusBadRequest)
		return
	}
	a.ok(w)
}

func (a *API) visibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hidden bool `json:"hidden"`
	}
	if !decode(w, r, &req) {
		return
	}
	a.m.SetHidden(req.Hidden)
	a.ok(w)
}

func (a *API) theme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !decode(w, r, &req) {
		return
	}
	if a.m.SetTheme(req.Theme) != req.Theme {
		http.Error(w, "theme must be light or dark", http.StatusBadRequest)
		return
	}
	a.ok(w)
}

package api

import (
	"github.com/satindergrewal/metronome/internal/stream"
	"github.com/satindergrewal/metronome/internal/transport"
)

type beatData struct {
	Beat   int  `json:"beat"`
	Beats  int  `json:"beats"`
	Accent bool `json:"accent"`
}

type timeData struct {
	Label   string `json:"label"`
	Display string `json:"display"`
	Running bool   `json:"running"`
	Done    bool   `json:"done"`
}

// EventMessage converts a transport event into the Server-Sent Event the
// browser page listens for.
func EventMessage(ev transport.Event) stream.Message {
	msg := stream.Message{Name: ev.Kind.String()}
	switch ev.Kind {
	case transport.EventBeat:
		msg.Data = beatData{Beat: ev.Pulse.Beat, Beats: ev.Pulse.BeatsPerBar, Accent: ev.Pulse.Accent}
	case transport.EventTime:
		r := ev.Timer
		msg.Data = timeData{Label: r.Label(), Display: r.Display, Running: r.Running, Done: r.Done}
	default:
		msg.Data = ev.Status
	}
	return msg
}

// InitialMessage is sent to every new events connection.
func (a *API) InitialMessage() stream.Message {
	return stream.Message{Name: "status", Data: a.m.Status()}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satindergrewal/metronome/internal/api"
	"github.com/satindergrewal/metronome/internal/audio"
	"github.com/satindergrewal/metronome/internal/config"
	"github.com/satindergrewal/metronome/internal/stream"
	"github.com/satindergrewal/metronome/internal/transport"
	"github.com/satindergrewal/metronome/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the metronome over HTTP with MP3 and WebRTC audio",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP port (default from METRONOME_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Println("metronome starting up...")

	// Audio engine: real-time render loop, clock for the scheduler
	engine := audio.NewEngine()
	go engine.Run(ctx)

	// Fan-out PCM frames to stream listeners
	frames := stream.NewHub[[]int16](stream.FrameBuffer)
	go frames.Run(ctx, engine.Frames())

	// Fan-out transport events to browsers
	events := stream.NewHub[stream.Message](stream.EventBuffer)

	opts := transportOptions(cfg)
	opts.OpenAudio = func() (audio.Device, error) { return engine, nil }
	opts.Notify = func(ev transport.Event) { events.Publish(api.EventMessage(ev)) }
	m := transport.New(opts)
	if err := restore(m, opts.Store); err != nil {
		log.Printf("Settings not restored: %v", err)
	}
	go m.Run(ctx)

	httpHandler := stream.NewHTTPHandler(frames, cfg.FFmpeg)
	webrtcHandler := stream.NewWebRTCHandler(frames)
	defer webrtcHandler.Close()

	a := api.New(m)
	a.Listeners = func() map[string]int {
		return map[string]int{
			"http":   frames.ListenerCount() - webrtcHandler.PeerCount(),
			"webrtc": webrtcHandler.PeerCount(),
			"events": events.ListenerCount(),
		}
	}

	mux := http.NewServeMux()

	// Web UI
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.IndexHTML)
	})

	// Audio streams
	mux.Handle("/stream", httpHandler)
	mux.Handle("/offer", webrtcHandler)

	// Beat and timer events
	mux.Handle("/events", stream.NewEventsHandler(events, a.InitialMessage))

	a.Register(mux)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		m.Stop()
		server.Close()
	}()

	log.Printf("metronome live on %s", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}

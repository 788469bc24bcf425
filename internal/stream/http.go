package stream

import (
	"context"
	"io"
	"log"
	"net/http"
	"os/exec"
	"strconv"

	"github.com/satindergrewal/metronome/internal/audio"
)

// HTTPHandler serves the click track as a chunked MP3 stream. Each
// connection spawns an FFmpeg process to encode PCM -> MP3 in real time.
type HTTPHandler struct {
	frames *Hub[[]int16]
	ffmpeg string
}

// NewHTTPHandler creates an HTTP stream handler using the given ffmpeg
// binary.
func NewHTTPHandler(frames *Hub[[]int16], ffmpeg string) *HTTPHandler {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &HTTPHandler{frames: frames, ffmpeg: ffmpeg}
}

// encoderArgs returns the ffmpeg arguments for PCM stdin -> MP3 stdout.
func encoderArgs() []string {
	return []string{
		"-f", "s16le",
		"-ar", strconv.Itoa(audio.SampleRate),
		"-ac", strconv.Itoa(audio.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
		"-b:a", "128k",
		"-f", "mp3",
		"-fflags", "nobuffer",
		"-flush_packets", "1",
		"-loglevel", "error",
		"pipe:1",
	}
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmd := exec.CommandContext(ctx, h.ffmpeg, encoderArgs()...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Printf("HTTP stream: stdin pipe error: %v", err)
		http.Error(w, "encoder unavailable", http.StatusServiceUnavailable)
		return
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Printf("HTTP stream: stdout pipe error: %v", err)
		http.Error(w, "encoder unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := cmd.Start(); err != nil {
		log.Printf("HTTP stream: ffmpeg start error: %v", err)
		http.Error(w, "encoder unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("ICY-Name", "metronome")

	listener := h.frames.Subscribe()
	defer h.frames.Unsubscribe(listener)

	log.Printf("HTTP listener connected (total: %d)", h.frames.ListenerCount())
	defer log.Printf("HTTP listener disconnected")

	// Feed PCM frames to FFmpeg
	go func() {
		defer stdin.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-listener.Done():
				return
			case frame := <-listener.C:
				if _, err := stdin.Write(audio.SamplesToBytes(frame)); err != nil {
					return
				}
			}
		}
	}()

	// Read MP3 from FFmpeg and write to HTTP response
	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				break
			}
			flusher.Flush()
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("HTTP stream: ffmpeg read error: %v", err)
			}
			break
		}
	}

	cancel()
	cmd.Wait()
}

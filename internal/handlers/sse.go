package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"bingohall/pkg/realtime"
)

// DefaultKeepAlive is how often an idle stream gets a comment line.
const DefaultKeepAlive = 25 * time.Second

// stream is one long-lived SSE endpoint backed by a subscription.
type stream[T any] struct {
	subscribe   func(id string, sink realtime.Sink[T])
	unsubscribe func(id string)
	render      func(T) (string, error)
	keepAlive   time.Duration
	logger      *slog.Logger
}

func (s stream[T]) serve(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id := uuid.NewString()
	events := make(chan T)
	s.subscribe(id, realtime.ChanSink(events))
	defer s.unsubscribe(id)
	s.logger.Debug("stream subscribed", "subscriber", id, "path", r.URL.Path)

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("stream closed", "subscriber", id)
			return
		case v := <-events:
			data, err := s.render(v)
			if err != nil {
				s.logger.Error("stream render failed", "subscriber", id, "error", err)
				continue
			}
			writeSSE(w, "", data)
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

// writeSSE writes one event. An empty event name leaves the default
// "message" event.
func writeSSE(w io.Writer, event string, data string) {
	if event != "" {
		_, _ = w.Write([]byte("event: " + event + "\n"))
	}
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bingohall/internal/game"
	"bingohall/internal/viewmodel"
	"bingohall/pkg/realtime"
)

// GameHandler controls the draw and streams it.
type GameHandler struct {
	hall      *game.Hall
	keepAlive time.Duration
	logger    *slog.Logger
}

func NewGameHandler(hall *game.Hall, keepAlive time.Duration, logger *slog.Logger) *GameHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GameHandler{hall: hall, keepAlive: keepAlive, logger: logger}
}

// RegisterRoutes mounts the short request/response routes.
func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Get("/start", h.start)
	r.Get("/stop", h.stop)
	r.Get("/status", h.status)
}

// RegisterStreams mounts the long-lived draw stream.
func (h *GameHandler) RegisterStreams(r chi.Router) {
	r.Get("/stream", h.stream)
}

func (h *GameHandler) start(w http.ResponseWriter, r *http.Request) {
	result := h.hall.Game.Start()
	h.logger.Info("start requested", "result", result.Message(), "request_id", requestID(r))
	writeText(w, http.StatusOK, result.Message())
}

func (h *GameHandler) stop(w http.ResponseWriter, r *http.Request) {
	result := h.hall.Game.Stop()
	h.logger.Info("stop requested", "result", result.Message(), "request_id", requestID(r))
	writeText(w, http.StatusOK, result.Message())
}

func (h *GameHandler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, viewmodel.NewStatus(h.hall.Status()))
}

func (h *GameHandler) stream(w http.ResponseWriter, r *http.Request) {
	stream[game.Draw]{
		subscribe: func(id string, sink realtime.Sink[game.Draw]) {
			h.hall.Game.Subscribe(id, sink)
		},
		unsubscribe: h.hall.Game.Unsubscribe,
		render: func(d game.Draw) (string, error) {
			return d.Text(), nil
		},
		keepAlive: h.keepAlive,
		logger:    h.logger,
	}.serve(w, r)
}

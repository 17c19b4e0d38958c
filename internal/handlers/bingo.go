package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bingohall/internal/game"
	"bingohall/internal/viewmodel"
	"bingohall/pkg/realtime"
)

const maxBingoBody = 64 << 10

// BingoHandler takes win reports and streams the leaderboard.
type BingoHandler struct {
	hall      *game.Hall
	encoder   *viewmodel.WinnerEncoder
	keepAlive time.Duration
	logger    *slog.Logger
}

func NewBingoHandler(hall *game.Hall, encoder *viewmodel.WinnerEncoder, keepAlive time.Duration, logger *slog.Logger) *BingoHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BingoHandler{hall: hall, encoder: encoder, keepAlive: keepAlive, logger: logger}
}

// RegisterRoutes mounts the win report route.
func (h *BingoHandler) RegisterRoutes(r chi.Router) {
	r.Post("/bingo", h.report)
}

// RegisterStreams mounts the long-lived leaderboard stream.
func (h *BingoHandler) RegisterStreams(r chi.Router) {
	r.Get("/leaderboard", h.leaderboard)
}

type bingoRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (h *BingoHandler) report(w http.ResponseWriter, r *http.Request) {
	req := h.decodeReport(w, r)
	if _, err := h.hall.Winners.Record(req.Name, req.Message); err != nil {
		if errors.Is(err, game.ErrValidation) {
			writeText(w, http.StatusBadRequest, "Name and message are required")
			return
		}
		h.logger.Error("record winner", "error", err, "request_id", requestID(r))
		writeText(w, http.StatusInternalServerError, "failed to record bingo")
		return
	}
	writeText(w, http.StatusOK, "Bingo reported successfully")
}

// decodeReport accepts a JSON body or a form post. A body that cannot be
// read leaves the fields empty, which the log rejects.
func (h *BingoHandler) decodeReport(w http.ResponseWriter, r *http.Request) bingoRequest {
	var req bingoRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBingoBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		req.Name = r.FormValue("name")
		req.Message = r.FormValue("message")
		return req
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("bingo body not decoded", "error", err, "request_id", requestID(r))
		return bingoRequest{}
	}
	return req
}

func (h *BingoHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	stream[game.WinnerRecord]{
		subscribe: func(id string, sink realtime.Sink[game.WinnerRecord]) {
			h.hall.Winners.Subscribe(id, sink)
		},
		unsubscribe: h.hall.Winners.Unsubscribe,
		render: func(rec game.WinnerRecord) (string, error) {
			data, err := h.encoder.Encode(rec)
			return string(data), err
		},
		keepAlive: h.keepAlive,
		logger:    h.logger,
	}.serve(w, r)
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bingohall/internal/game"
	"bingohall/internal/viewmodel"
	"bingohall/pkg/realtime"
)

const (
	socketWriteTimeout = 5 * time.Second
	socketOutbox       = 32
)

// Envelope types sent over the socket.
const (
	EnvelopeDraw   = "draw"
	EnvelopeWinner = "winner"
)

// Envelope is one socket message. Payload is a game.Draw for draws and a
// viewmodel.Winner for winners.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SocketHandler serves both streams over one websocket.
type SocketHandler struct {
	hall    *game.Hall
	encoder *viewmodel.WinnerEncoder
	logger  *slog.Logger
}

func NewSocketHandler(hall *game.Hall, encoder *viewmodel.WinnerEncoder, logger *slog.Logger) *SocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketHandler{hall: hall, encoder: encoder, logger: logger}
}

// RegisterStreams mounts the websocket endpoint.
func (h *SocketHandler) RegisterStreams(r chi.Router) {
	r.Get("/ws", h.serve)
}

func (h *SocketHandler) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err, "request_id", requestID(r))
		return
	}
	defer conn.CloseNow()

	// Clients only listen; reads just watch for the close frame.
	ctx := conn.CloseRead(r.Context())

	id := uuid.NewString()
	outbox := make(chan Envelope, socketOutbox)

	h.hall.Game.Subscribe(id, realtime.SinkFunc[game.Draw](func(ctx context.Context, d game.Draw) error {
		payload, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return enqueue(ctx, outbox, Envelope{Type: EnvelopeDraw, Payload: payload})
	}))
	defer h.hall.Game.Unsubscribe(id)

	h.hall.Winners.Subscribe(id, realtime.SinkFunc[game.WinnerRecord](func(ctx context.Context, rec game.WinnerRecord) error {
		payload, err := h.encoder.Encode(rec)
		if err != nil {
			return err
		}
		return enqueue(ctx, outbox, Envelope{Type: EnvelopeWinner, Payload: payload})
	}))
	defer h.hall.Winners.Unsubscribe(id)

	h.logger.Debug("socket subscribed", "subscriber", id)
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("socket closed", "subscriber", id)
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg := <-outbox:
			if err := h.write(ctx, conn, msg); err != nil {
				h.logger.Debug("socket write failed", "subscriber", id, "error", err)
				return
			}
		}
	}
}

func (h *SocketHandler) write(ctx context.Context, conn *websocket.Conn, msg Envelope) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, socketWriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func enqueue(ctx context.Context, outbox chan<- Envelope, msg Envelope) error {
	select {
	case outbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

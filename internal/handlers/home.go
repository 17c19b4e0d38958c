package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bingohall/internal/game"
	"bingohall/internal/viewmodel"
)

type HomeHandler struct {
	hall *game.Hall
}

func NewHomeHandler(hall *game.Hall) *HomeHandler {
	return &HomeHandler{hall: hall}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/healthz", h.healthz)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	snapshot := h.hall.Game.Snapshot()
	render(w, r, homePage(viewmodel.HomePage{
		Title:    "Bingo",
		PoolSize: snapshot.PoolSize,
		Running:  snapshot.Running,
	}))
}

func (h *HomeHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

package handler

import (
	"context"
	"net/http"

	"github.com/dukerupert/outplay/internal/weather"
)

// ConditionsProvider reports current outdoor conditions.
type ConditionsProvider interface {
	Conditions(ctx context.Context) weather.Conditions
}

type ConditionsHandler struct {
	weather ConditionsProvider
}

func NewConditionsHandler(p ConditionsProvider) *ConditionsHandler {
	return &ConditionsHandler{weather: p}
}

func (h *ConditionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.weather.Conditions(r.Context()))
}

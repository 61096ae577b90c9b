package http

import "net/http"

// DashboardResumen devuelve los conteos de las tarjetas del dashboard.
func (h *Handler) DashboardResumen(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.panel.Resumen(r.Context()))
}

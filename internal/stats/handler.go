package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"licensio/pkg/platform/httputil"
	"licensio/pkg/requestcontext"
)

// Handler exposes the dashboard counters to administrators.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "stats.handler"),
	}
}

// RegisterAdmin mounts the admin-only stats endpoint.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/stats", h.HandleSummary)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summarize(ctx, requestcontext.Caller(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": summary})
}

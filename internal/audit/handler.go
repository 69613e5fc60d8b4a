package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/platform/httputil"
	"licensio/pkg/requestcontext"
)

// Handler exposes the persisted event log to administrators.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "audit.handler"),
	}
}

// RegisterAdmin mounts the admin-only audit endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/logs", h.HandleRecentLogs)
}

func (h *Handler) HandleRecentLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	events, err := h.service.RecentLogs(ctx, requestcontext.Caller(ctx), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": events})
}

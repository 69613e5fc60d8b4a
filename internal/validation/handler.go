package validation

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"licensio/pkg/platform/httputil"
	"licensio/pkg/requestcontext"
)

// Handler exposes the public validation endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "validation.handler"),
	}
}

// RegisterPublic mounts the validation endpoint. It is deliberately
// unauthenticated: the key and secret are the credential.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/validate", h.HandleValidate)
}

type validateRequest struct {
	APIKey   string `json:"api_key"`
	Secret   string `json:"secret"`
	Domain   string `json:"domain"`
	ClientIP string `json:"client_ip,omitempty"`
}

type validateResponse struct {
	Valid     bool   `json:"valid"`
	ErrorCode string `json:"error_code"`
}

func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[validateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.Validate(ctx, Request{
		KeyString: req.APIKey,
		Secret:    req.Secret,
		Domain:    req.Domain,
		ClientIP:  req.ClientIP,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "validation decided",
		"request_id", requestID,
		"error_code", outcome.Code,
		"valid", outcome.Valid,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, validateResponse{
		Valid:     outcome.Valid,
		ErrorCode: string(outcome.Code),
	})
}

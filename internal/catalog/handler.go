package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"licensio/pkg/platform/httputil"
	"licensio/pkg/requestcontext"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "catalog.handler"),
	}
}

// RegisterAdmin mounts the admin-only catalog endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/create-product", h.HandleCreate)
}

// RegisterAuthenticated mounts the catalog reads available to any caller.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/customer/products", h.HandleList)
}

type createRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	product, err := h.service.Create(ctx, requestcontext.Caller(ctx), req.Name, req.Slug, req.Description)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "product created",
		"request_id", requestID,
		"product_id", product.ID,
		"slug", product.Slug,
	)
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"data": product.ToPublic()})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]Public, 0, len(products))
	for _, p := range products {
		out = append(out, p.ToPublic())
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": out})
}

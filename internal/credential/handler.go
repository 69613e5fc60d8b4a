package credential

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/platform/httputil"
	"licensio/pkg/requestcontext"
)

// Handler wires credential endpoints to the credential service.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "credential.handler"),
	}
}

// RegisterAdmin mounts the admin-only credential endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/create-apikey", h.HandleIssue)
	r.Get("/admin/apikeys", h.HandleList)
	r.Patch("/admin/apikey/{id}", h.HandleAdminUpdate)
}

// RegisterAuthenticated mounts the customer-facing credential endpoints.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/customer/apikeys", h.HandleList)
	r.Patch("/customer/apikey/{id}/domains", h.HandleUpdateDomains)
}

type issueRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	TTLDays   *int   `json:"ttl_days"`
}

// issueResponse is the single place the plaintext secret ever appears.
type issueResponse struct {
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
	Data      Public `json:"data"`
}

type domainsRequest struct {
	AllowedDomains []string `json:"allowed_domains"`
}

type adminUpdateRequest struct {
	Status         *string   `json:"status,omitempty"`
	AllowedDomains *[]string `json:"allowed_domains,omitempty"`
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[issueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	targetID, err := id.ParseUserID(req.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	productID, err := id.ParseProductID(req.ProductID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	issued, err := h.service.Issue(ctx, requestcontext.Caller(ctx), targetID, productID, req.TTLDays)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "credential issued",
		"request_id", requestID,
		"credential_id", issued.Credential.ID,
		"owner_id", issued.Credential.OwnerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, issueResponse{
		APIKey:    issued.Credential.KeyString,
		APISecret: issued.APISecret,
		Data:      issued.Credential.ToPublic(),
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credentials, err := h.service.ListForCaller(ctx, requestcontext.Caller(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]Public, 0, len(credentials))
	for _, c := range credentials {
		out = append(out, c.ToPublic())
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) HandleUpdateDomains(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[domainsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.UpdateAllowedDomains(ctx, requestcontext.Caller(ctx), credentialID, req.AllowedDomains)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": updated.ToPublic()})
}

// HandleAdminUpdate covers the admin PATCH surface: revocation and domain
// overrides share one endpoint.
func (h *Handler) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[adminUpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	caller := requestcontext.Caller(ctx)
	var updated Credential

	switch {
	case req.Status != nil:
		if *req.Status != string(StatusRevoked) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "status can only be set to revoked"))
			return
		}
		updated, err = h.service.Revoke(ctx, caller, credentialID)
	case req.AllowedDomains != nil:
		updated, err = h.service.UpdateAllowedDomains(ctx, caller, credentialID, *req.AllowedDomains)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "nothing to update"))
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": updated.ToPublic()})
}

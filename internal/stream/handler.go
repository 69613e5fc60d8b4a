package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"licensio/internal/audit"
	id "licensio/pkg/domain"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/platform/httputil"
	mwauth "licensio/pkg/platform/middleware/auth"
)

// Subscriber hands out the snapshot plus live feed for one session.
type Subscriber interface {
	Subscribe(ctx context.Context, sessionID string) ([]audit.Event, <-chan audit.Event, func(), error)
}

// frame is the envelope every WebSocket message travels in. The first frame
// of a session carries event "snapshot"; every frame after that carries the
// live event name.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Handler upgrades admin connections onto the live security event channel.
type Handler struct {
	events    Subscriber
	validator mwauth.TokenValidator
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

func NewHandler(events Subscriber, validator mwauth.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		events:    events,
		validator: validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The admin panel runs on its own origin; the bearer token is
			// the access control, not the Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger.With("component", "stream.handler"),
	}
}

// RegisterPublic mounts the channel endpoint. Authentication happens inside
// the handler because browsers cannot set headers on WebSocket dials; the
// token may arrive as a query parameter instead.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/ws/security-log", h.HandleLive)
}

func (h *Handler) HandleLive(w http.ResponseWriter, r *http.Request) {
	claims, err := h.authenticate(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	sessionID := uuid.NewString()
	snapshot, live, cancel, err := h.events.Subscribe(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("subscribe failed", "error", err, "session_id", sessionID)
		conn.Close()
		return
	}

	h.logger.Info("monitoring session opened",
		"session_id", sessionID,
		"user_id", claims.UserID,
	)

	s := newSession(sessionID, conn, h.logger)
	go s.writePump()
	go s.readPump()
	go h.forward(s, snapshot, live, cancel)
}

func (h *Handler) authenticate(r *http.Request) (*mwauth.TokenClaims, error) {
	token := ""
	if header := r.Header.Get("Authorization"); header != "" {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing token")
	}

	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if claims.Role != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin access required")
	}
	return claims, nil
}

// forward feeds the session: the snapshot frame first, then one frame per
// live event. It is the sole owner of the subscription and cancels it on the
// way out, whatever ended the session.
func (h *Handler) forward(s *session, snapshot []audit.Event, live <-chan audit.Event, cancel func()) {
	defer cancel()
	defer s.shutdown()

	if snapshot == nil {
		snapshot = []audit.Event{}
	}
	if !h.send(s, frame{Event: "snapshot", Data: snapshot}) {
		return
	}

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-live:
			if !ok {
				// The bus closed the channel, e.g. a new session reused
				// this session ID.
				return
			}
			if !h.send(s, frame{Event: audit.EventName, Data: event}) {
				return
			}
		}
	}
}

func (h *Handler) send(s *session, f frame) bool {
	payload, err := json.Marshal(f)
	if err != nil {
		h.logger.Error("marshal frame", "error", err)
		return false
	}
	return s.enqueue(payload)
}

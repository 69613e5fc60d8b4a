package validation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"licensio/internal/audit"
	"licensio/internal/credential"
	"licensio/internal/validation/metrics"
	dErrors "licensio/pkg/domain-errors"
	"licensio/pkg/platform/sentinel"
	"licensio/pkg/requestcontext"
)

var tracer trace.Tracer = otel.Tracer("licensio/internal/validation")

// KeyDirectory is the point lookup the hot path depends on.
type KeyDirectory interface {
	FindByKey(ctx context.Context, keyString string) (credential.Credential, error)
}

// Recorder accepts the security event for every completed attempt.
type Recorder interface {
	Record(ctx context.Context, event audit.Event) audit.Event
}

// Request carries one validation attempt. ClientIP overrides the transport
// metadata when the caller sits behind its own proxy layer.
type Request struct {
	KeyString string
	Secret    string
	Domain    string
	ClientIP  string
}

// Outcome is the decision returned to the caller. A deny is a normal
// outcome, not an error.
type Outcome struct {
	Valid bool
	Code  audit.Code
}

// Service runs the validation decision and emits its audit event.
type Service struct {
	directory KeyDirectory
	recorder  Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(directory KeyDirectory, recorder Recorder, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		directory: directory,
		recorder:  recorder,
		metrics:   m,
		logger:    logger.With("component", "validation.service"),
	}
}

// Validate decides whether the presented key may act for the given domain.
// Every completed attempt produces exactly one security event; only an
// infrastructure failure short of a decision produces none, and that failure
// surfaces as an internal error rather than a deny.
func (s *Service) Validate(ctx context.Context, req Request) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "validation.Validate")
	defer span.End()
	start := time.Now()

	if req.KeyString == "" {
		return Outcome{}, dErrors.New(dErrors.CodeInvalidInput, "api_key is required")
	}

	event := audit.Event{
		KeyString: req.KeyString,
		IPAddress: req.ClientIP,
		Domain:    req.Domain,
		UserAgent: requestcontext.UserAgent(ctx),
	}
	if event.IPAddress == "" {
		event.IPAddress = requestcontext.ClientIP(ctx)
	}

	var code audit.Code
	cred, err := s.directory.FindByKey(ctx, req.KeyString)
	switch {
	case err == nil:
		event.CredentialID = cred.ID
		code = Evaluate(cred, req.Secret, req.Domain, requestcontext.Now(ctx))
	case errors.Is(err, sentinel.ErrNotFound):
		code = audit.CodeNotFound
	default:
		s.metrics.IncrementInfraError()
		s.logger.ErrorContext(ctx, "credential lookup failed", "error", err)
		return Outcome{}, dErrors.Wrap(dErrors.CodeInternal, "validation unavailable", err)
	}

	event.ErrorCode = code
	event.Result = audit.ResultDeny
	if code == audit.CodeOK {
		event.Result = audit.ResultAllow
	}
	s.recorder.Record(ctx, event)

	span.SetAttributes(
		attribute.String("validation.error_code", string(code)),
		attribute.String("validation.result", string(event.Result)),
	)
	s.metrics.ObserveOutcome(string(code), time.Since(start).Seconds())

	return Outcome{Valid: code == audit.CodeOK, Code: code}, nil
}

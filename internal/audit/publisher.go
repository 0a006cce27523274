package audit

import (
	"context"
	"log/slog"

	"chamber/internal/platform/metrics"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// Publisher emits audit events with fail-closed semantics. Emit blocks until
// the entry is persisted; callers MUST fail their operation when it errors.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	async   chan<- Event
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithAsyncInbox enables EmitAsync by giving the publisher a channel drained
// by a Worker. Without it, EmitAsync falls back to a synchronous append.
func WithAsyncInbox(inbox chan<- Event) Option {
	return func(p *Publisher) {
		p.async = inbox
	}
}

// NewPublisher creates an audit publisher backed by the given store.
func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes one audit event.
//
// Request-scoped metadata (timestamp, request ID, client IP, user agent) is
// filled from context when the event does not carry it. The event's Category
// is always derived from its Action.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.AttorneyID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "audit event requires an attorney ID")
	}
	if event.Action == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "audit event requires an action")
	}

	p.enrich(ctx, &event)

	if err := p.store.Append(ctx, &event); err != nil {
		p.logger.ErrorContext(ctx, "CRITICAL: audit persistence failed",
			"action", event.Action,
			"attorney_id", event.AttorneyID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeAuditWriteFailure, "audit persistence failed")
	}

	if p.metrics != nil && event.Status == StatusViolation {
		p.metrics.Violations.Inc()
	}
	return nil
}

// EmitAsync queues an event for background persistence. Used only for
// edge-of-system denial events where blocking the response is undesirable;
// business operations always use Emit.
func (p *Publisher) EmitAsync(ctx context.Context, event Event) {
	p.enrich(ctx, &event)

	if p.async == nil {
		if err := p.store.Append(ctx, &event); err != nil {
			p.logger.ErrorContext(ctx, "async audit append failed", "action", event.Action, "error", err)
		}
		return
	}

	select {
	case p.async <- event:
	default:
		// Inbox full. Dropping a denial event is preferable to blocking the
		// request path, but it must be visible in logs.
		p.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", event.Action,
			"attorney_id", event.AttorneyID,
		)
	}
}

// Violation is a convenience wrapper for emitting a violation-status event.
func (p *Publisher) Violation(ctx context.Context, event Event) error {
	event.Status = StatusViolation
	return p.Emit(ctx, event)
}

func (p *Publisher) enrich(ctx context.Context, event *Event) {
	event.Category = event.Action.Category()
	if event.Status == "" {
		event.Status = StatusCompliant
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}
}

package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "quill"

// Tracer and Meter resolve through the global providers, which stay no-op
// until a host installs an SDK.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the domain counters.
type Metrics struct {
	postsCreated    metric.Int64Counter
	likesToggled    metric.Int64Counter
	commentsCreated metric.Int64Counter
	contactsSent    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) *Metrics {
	return &Metrics{
		postsCreated:    counter(meter, "quill.posts.created", "Posts created"),
		likesToggled:    counter(meter, "quill.likes.toggled", "Like toggles, by resulting state"),
		commentsCreated: counter(meter, "quill.comments.created", "Comments created"),
		contactsSent:    counter(meter, "quill.contacts.created", "Contact messages received"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		slog.Warn("failed to create counter", "name", name, "error", err)
	}
	return c
}

// A nil *Metrics records nothing.

func (m *Metrics) PostCreated(ctx context.Context, status string) {
	if m == nil || m.postsCreated == nil {
		return
	}
	m.postsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *Metrics) LikeToggled(ctx context.Context, liked bool) {
	if m == nil || m.likesToggled == nil {
		return
	}
	m.likesToggled.Add(ctx, 1, metric.WithAttributes(attribute.Bool("liked", liked)))
}

func (m *Metrics) CommentCreated(ctx context.Context) {
	if m == nil || m.commentsCreated == nil {
		return
	}
	m.commentsCreated.Add(ctx, 1)
}

func (m *Metrics) ContactCreated(ctx context.Context) {
	if m == nil || m.contactsSent == nil {
		return
	}
	m.contactsSent.Add(ctx, 1)
}

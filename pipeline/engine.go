package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/livecoll/diff"
	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/logger"
	"github.com/kbukum/livecoll/observability"
	"github.com/kbukum/livecoll/reactive"
)

// Transformation kinds, used as the transform attribute on metrics and spans.
const (
	KindMap           = "map"
	KindFilter        = "filter"
	KindSortBy        = "sortBy"
	KindIndexBy       = "indexBy"
	KindUniqueIndexBy = "uniqueIndexBy"
)

// Source is a sequence a transformation can observe. *reactive.Array and
// *Collection implement it.
type Source[T any] interface {
	Runtime() *reactive.Runtime
	Peek() []T
	SubscribeChanges(fn func(diff.Script[T]) error) *reactive.Subscription
}

// base carries what every engine shares: identity, telemetry and the
// subscription to its source.
type base struct {
	rt   *reactive.Runtime
	kind string
	name string
	id   string
	log  *logger.Logger
	sub  *reactive.Subscription
}

func newBase(rt *reactive.Runtime, kind, name string) *base {
	id := uuid.NewString()
	if name == "" {
		name = kind
	}
	log := rt.Logger().WithComponent("pipeline." + kind).WithFields(logger.Fields(
		logger.FieldCollection, id,
		logger.FieldName, name,
	))
	return &base{rt: rt, kind: kind, name: name, id: id, log: log}
}

// apply runs fn for a diff of n entries inside a span and records its
// duration and failure.
func (b *base) apply(n int, fn func() error) error {
	ctx, span := b.rt.Tracer().Start(b.rt.Context(), observability.SpanApplyDiff, trace.WithAttributes(
		attribute.String(observability.AttrTransform, b.kind),
		attribute.String(observability.AttrCollectionID, b.id),
		attribute.String(observability.AttrName, b.name),
		attribute.Int(observability.AttrEntries, n),
	))
	start := time.Now()
	err := fn()
	b.rt.Metrics().RecordDiff(ctx, b.kind, n, time.Since(start))
	b.fail(ctx, err)
	observability.EndSpan(span, err)
	return err
}

// fail records err, if any, against this transformation.
func (b *base) fail(ctx context.Context, err error) {
	if err == nil {
		return
	}
	appErr := errors.Wrap(err)
	b.rt.Metrics().RecordError(ctx, b.kind, string(appErr.Code))
	b.log.Debug("transformation failed", logger.Fields(
		logger.FieldError, err.Error(),
		"code", string(appErr.Code),
	))
}

// released detaches from the source and records how many elements were
// disposed with the engine.
func (b *base) released(items int) {
	b.sub.Dispose()
	b.rt.Metrics().RecordDisposal(b.rt.Context(), b.kind, items)
	b.log.Debug("transformation disposed", logger.Fields(logger.FieldSize, items))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

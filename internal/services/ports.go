package services

import (
	"context"

	"product-template-service/internal/models"
)

// EventPublisher receives an event for every committed registry write.
// Failures are logged by the caller and never undo the write.
type EventPublisher interface {
	PublishTemplateEvent(ctx context.Context, event models.TemplateEvent) error
}

type NopPublisher struct{}

func (NopPublisher) PublishTemplateEvent(context.Context, models.TemplateEvent) error { return nil }

// TemplateCache is an optional read-through cache for GetTemplate. A miss
// returns a generation; Set must drop the template when Invalidate has run
// since that generation was read.
type TemplateCache interface {
	Get(ctx context.Context, id uint64) (*models.ProductTemplate, uint64, bool)
	Set(ctx context.Context, tmpl *models.ProductTemplate, generation uint64)
	Invalidate(ctx context.Context, id uint64)
}

type options struct {
	clock     Clock
	publisher EventPublisher
	cache     TemplateCache
}

type Option func(*options)

func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithCache enables the template cache. Only the registry reads it.
func WithCache(c TemplateCache) Option {
	return func(o *options) { o.cache = c }
}

func buildOptions(opts []Option) options {
	o := options{clock: SystemClock{}, publisher: NopPublisher{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

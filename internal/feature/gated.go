package feature

import (
	"context"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"vellum/internal/deferred"
)

// GatedCompletion builds its inner provider once a deferred resource
// resolves. Awaiting the resource happens inside this provider's own
// fan-out slot, so providers that do not need the resource are never held
// up by it.
type GatedCompletion[R any] struct {
	resource *deferred.Value[R]
	build    func(R) CompletionProvider

	once     sync.Once
	provider CompletionProvider
}

func NewGatedCompletion[R any](resource *deferred.Value[R], build func(R) CompletionProvider) *GatedCompletion[R] {
	return &GatedCompletion[R]{resource: resource, build: build}
}

func (g *GatedCompletion[R]) Complete(ctx context.Context, req Request) ([]protocol.CompletionItem, error) {
	value := g.resource.Get(ctx)
	if ctx.Err() != nil {
		// Resource still initializing when the request ended; contribute
		// nothing rather than a provider built on a placeholder.
		return nil, nil
	}
	g.once.Do(func() { g.provider = g.build(value) })
	return g.provider.Complete(ctx, req)
}

// GatedHover is the hover counterpart of GatedCompletion.
type GatedHover[R any] struct {
	resource *deferred.Value[R]
	build    func(R) HoverProvider

	once     sync.Once
	provider HoverProvider
}

func NewGatedHover[R any](resource *deferred.Value[R], build func(R) HoverProvider) *GatedHover[R] {
	return &GatedHover[R]{resource: resource, build: build}
}

func (g *GatedHover[R]) Hover(ctx context.Context, req Request) (*protocol.Hover, error) {
	value := g.resource.Get(ctx)
	if ctx.Err() != nil {
		return nil, nil
	}
	g.once.Do(func() { g.provider = g.build(value) })
	return g.provider.Hover(ctx, req)
}

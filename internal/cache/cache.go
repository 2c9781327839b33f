package cache

import (
	"context"

	"catalogapi/internal/model"
)

// ProductCache is a read-through cache for single products. A miss is
// reported as (nil, nil); cache failures are surfaced as errors and callers
// treat them as misses.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	SetProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// Noop satisfies ProductCache without caching anything. Used when no Redis
// address is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) GetProduct(ctx context.Context, id string) (*model.Product, error) { return nil, nil }
func (*Noop) SetProduct(ctx context.Context, p *model.Product) error            { return nil }
func (*Noop) DeleteProduct(ctx context.Context, id string) error                { return nil }

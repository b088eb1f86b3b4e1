package cache

import (
	"context"

	"github.com/mess-ledger/backend/internal/types"
)

// Noop never stores anything. Every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, any) error { return nil }

func (Noop) Invalidate(context.Context, types.Month) error { return nil }

func (Noop) Flush(context.Context) error { return nil }

package rawtable

import (
	"context"

	"github.com/riskibarqy/fpl-dataset/internal/platform/frame"
)

// Repository persists tables as whole snapshots. Load returns an error
// wrapping ErrTableNotFound when nothing was saved under ref.
type Repository interface {
	Load(ctx context.Context, ref Ref) (*frame.Frame, error)
	Save(ctx context.Context, ref Ref, table *frame.Frame) error
}

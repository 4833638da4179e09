package ports

import (
	"context"

	"github.com/hexapod/packs-go/internal/domain"
)

// Notifier announces a successfully opened pack to an external sink.
// Delivery is best-effort: callers log the returned error and move on, and
// a failure never affects pack state.
type Notifier interface {
	// Name labels the sink in logs and metrics.
	Name() string
	PackOpened(ctx context.Context, identity domain.Identity, pack domain.Pack) error
}

package sink

import (
	"context"

	"github.com/ReqCrypto/sol-meme-scanner/internal/domain"
)

// Sink receives one fully assembled cycle at a time. An empty candidate
// list is a valid delivery. Implementations must be safe to call from the
// scheduler goroutine.
type Sink interface {
	Deliver(ctx context.Context, res *domain.CycleResult) error
	Health(ctx context.Context) error
}

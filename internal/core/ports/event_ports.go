package ports

import (
	"context"

	"github.com/ballotbox/api/internal/core/domain"
)

// EventEmitter is the notification collaborator's inbound surface. Emit is
// called synchronously after the triggering state change committed; emitters
// must not block on network I/O.
type EventEmitter interface {
	Emit(ctx context.Context, event domain.Event)
}

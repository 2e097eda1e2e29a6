package notifier

import (
	"context"
	"sync"

	"github.com/ballotbox/api/internal/core/domain"
)

// Capture records emitted events in memory. Tests use it to assert on the
// event stream the engine produces.
type Capture struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) Emit(_ context.Context, event domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *Capture) Events() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out
}

// OfType returns the captured events matching t, in emission order.
func (c *Capture) OfType(t domain.EventType) []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []domain.Event
	for _, event := range c.events {
		if event.Type == t {
			out = append(out, event)
		}
	}
	return out
}

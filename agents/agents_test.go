package agents

import (
	"context"
	"sync"

	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
)

// recordingCoordinator captures published events for assertions.
type recordingCoordinator struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (r *recordingCoordinator) Publish(_ context.Context, ev broadcast.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingCoordinator) Status(context.Context) (map[string]any, error) {
	return map[string]any{"connected": true}, nil
}

func (r *recordingCoordinator) byChannel(ch broadcast.Channel) []broadcast.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []broadcast.Event
	for _, ev := range r.events {
		if ev.Channel == ch {
			out = append(out, ev)
		}
	}
	return out
}

// Package notify is the observational notification surface. Notifiers
// never change control flow.
package notify

import (
	"log/slog"
	"sync"
)

type Kind string

const (
	KindInfo    Kind = "INFO"
	KindSuccess Kind = "SUCCESS"
	KindError   Kind = "ERROR"
)

type Notifier interface {
	Notify(kind Kind, msg string, params map[string]any)
}

// LogNotifier writes notifications to structured logs.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(kind Kind, msg string, params map[string]any) {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	attrs := make([]any, 0, 2+2*len(params))
	attrs = append(attrs, slog.String("kind", string(kind)))
	for k, v := range params {
		attrs = append(attrs, slog.Any(k, v))
	}
	if kind == KindError {
		log.Error(msg, attrs...)
		return
	}
	log.Info(msg, attrs...)
}

// Event is a recorded notification (test use).
type Event struct {
	Kind   Kind
	Msg    string
	Params map[string]any
}

// MemoryNotifier records notifications in memory (dev/test use).
type MemoryNotifier struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (n *MemoryNotifier) Notify(kind Kind, msg string, params map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Event{Kind: kind, Msg: msg, Params: params})
}

func (n *MemoryNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Event, len(n.events))
	copy(out, n.events)
	return out
}

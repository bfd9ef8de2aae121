package workcontext

import (
	"strings"
	"sync"
	"time"

	"github.com/MostafaAmin07/super-productivity/internal/clock"
	"github.com/MostafaAmin07/super-productivity/internal/model"
)

// ActiveContext identifies the single context currently in focus.
type ActiveContext struct {
	ID   model.WorkContextID   `json:"activeId"`
	Type model.WorkContextType `json:"activeType"`
}

// Pointer is the authoritative owner of the active (id, type) pair. It is
// mutated only by explicit activation events and fans them out to
// subscribers over cancel-safe channels.
type Pointer struct {
	mu        sync.RWMutex
	clock     clock.Clock
	active    *ActiveContext
	changedAt time.Time

	subMu   sync.Mutex
	subs    map[int]chan ActiveContext
	nextSub int
}

func NewPointer(c clock.Clock) *Pointer {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Pointer{
		clock: c,
		subs:  map[int]chan ActiveContext{},
	}
}

func (p *Pointer) Active() (ActiveContext, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.active == nil {
		return ActiveContext{}, false
	}
	return *p.active, true
}

// ChangedAt returns the time of the last transition (zero if none yet).
func (p *Pointer) ChangedAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.changedAt
}

// SetActive transitions to the given context. Re-activating the current
// context is a no-op and reports false.
func (p *Pointer) SetActive(id model.WorkContextID, typ model.WorkContextType) bool {
	p.mu.Lock()
	if p.active != nil && p.active.ID == id && p.active.Type == typ {
		p.mu.Unlock()
		return false
	}
	next := ActiveContext{ID: id, Type: typ}
	p.active = &next
	p.changedAt = p.clock.Now()
	p.mu.Unlock()

	p.publish(next)
	return true
}

// Clear drops the active context, e.g. after it was deleted.
func (p *Pointer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active == nil {
		return
	}
	p.active = nil
	p.changedAt = p.clock.Now()
}

// Subscribe returns a channel of activation events and a cancel func.
// Slow consumers lose events rather than blocking the publisher.
func (p *Pointer) Subscribe() (<-chan ActiveContext, func()) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	id := p.nextSub
	p.nextSub++
	ch := make(chan ActiveContext, 8)
	p.subs[id] = ch

	cancel := func() {
		p.subMu.Lock()
		defer p.subMu.Unlock()
		if c, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (p *Pointer) publish(ac ActiveContext) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	for _, ch := range p.subs {
		select {
		case ch <- ac:
		default:
		}
	}
}

// ParseRoute derives an activation event from a two-segment navigation
// path: "project/<id>" or "tag/<id>". ok=false for anything else.
func ParseRoute(path string) (ActiveContext, bool) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] == "" {
		return ActiveContext{}, false
	}
	switch parts[0] {
	case "project":
		return ActiveContext{ID: model.WorkContextID(parts[1]), Type: model.WorkContextProject}, true
	case "tag":
		return ActiveContext{ID: model.WorkContextID(parts[1]), Type: model.WorkContextTag}, true
	}
	return ActiveContext{}, false
}

package trace

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Heartbeat forwards events to the wrapped tracer and remembers which pass
// spans (load, validate, generate, compile, backmap) are still open. Every
// interval it emits one heartbeat per open pass naming the phase, its scene and
// how long it has been running, so a compiler child that hangs shows up as a
// growing "compile" entry. With no pass open it reports "idle".
type Heartbeat struct {
	Tracer
	interval time.Duration

	mu    sync.Mutex
	open  map[uint64]openPass
	beats uint64

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type openPass struct {
	id      uint64
	name    string
	scene   string
	started time.Time
}

// StartHeartbeat wraps next and starts beating. It returns nil when next is
// disabled or interval is not positive.
func StartHeartbeat(next Tracer, interval time.Duration) *Heartbeat {
	if next == nil || !next.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		Tracer:   next,
		interval: interval,
		open:     make(map[uint64]openPass),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

// Emit tracks pass spans before handing ev on.
func (h *Heartbeat) Emit(ev *Event) {
	if ev.Scope == ScopePass && ev.SpanID != 0 {
		h.mu.Lock()
		switch ev.Kind {
		case KindSpanBegin:
			h.open[ev.SpanID] = openPass{id: ev.SpanID, name: ev.Name, scene: ev.Scene, started: ev.Time}
		case KindSpanEnd:
			delete(h.open, ev.SpanID)
		}
		h.mu.Unlock()
	}
	h.Tracer.Emit(ev)
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			h.beat(now)
		case <-h.stop:
			return
		}
	}
}

// beat reports the passes open at now, oldest first.
func (h *Heartbeat) beat(now time.Time) {
	h.mu.Lock()
	h.beats++
	n := strconv.FormatUint(h.beats, 10)
	passes := make([]openPass, 0, len(h.open))
	for _, p := range h.open {
		passes = append(passes, p)
	}
	h.mu.Unlock()

	if len(passes) == 0 {
		h.Tracer.Emit(&Event{
			Time:   now,
			Kind:   KindHeartbeat,
			Scope:  ScopeDriver,
			Name:   "heartbeat",
			Detail: "idle",
			Extra:  map[string]string{"beat": n},
		})
		return
	}
	slices.SortFunc(passes, func(a, b openPass) int {
		if c := a.started.Compare(b.started); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	for _, p := range passes {
		elapsed := now.Sub(p.started).Round(time.Millisecond)
		h.Tracer.Emit(&Event{
			Time:   now,
			Kind:   KindHeartbeat,
			Scope:  ScopeDriver,
			Name:   "heartbeat",
			Detail: fmt.Sprintf("%s running for %s", p.name, elapsed),
			Scene:  p.scene,
			Extra:  map[string]string{"beat": n, "phase": p.name, "elapsed": elapsed.String()},
		})
	}
}

// Stop ends the heartbeat goroutine and waits for it. The wrapped tracer stays open.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() {
		close(h.stop)
		<-h.done
	})
}

// Close stops beating, then closes the wrapped tracer.
func (h *Heartbeat) Close() error {
	h.Stop()
	return h.Tracer.Close()
}

// Unwrap returns the tracer events are forwarded to.
func (h *Heartbeat) Unwrap() Tracer {
	return h.Tracer
}

// Package visual delays beat highlights until the instant their click is
// heard.
//
// The scheduler works ahead of real time, so each pulse is queued with the
// delay between "now" and its click time. The Dispatcher is a priority queue
// of (fire time, pulse) pairs on its own clock; Run delivers pulses in fire
// order.
package visual

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/satindergrewal/metronome/internal/clock"
)

// Pulse marks one main beat for display.
type Pulse struct {
	Beat        int           // 0-indexed position in the bar
	BeatsPerBar int           // bar length when the beat was scheduled
	Accent      bool          // rendered with the accent timbre
	At          time.Duration // click time on the audio clock
}

type entry struct {
	fire  time.Duration
	seq   uint64
	pulse Pulse
}

type queue []entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].fire != q[j].fire {
		return q[i].fire < q[j].fire
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(entry)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

// Dispatcher holds pulses until their fire time.
type Dispatcher struct {
	clock   clock.Clock
	deliver func(Pulse)
	wake    chan struct{}

	mu  sync.Mutex
	q   queue
	seq uint64
}

// NewDispatcher creates a dispatcher that delivers due pulses to fn.
func NewDispatcher(c clock.Clock, fn func(Pulse)) *Dispatcher {
	return &Dispatcher{
		clock:   c,
		deliver: fn,
		wake:    make(chan struct{}, 1),
	}
}

// Enqueue schedules p to fire after delay. Negative delays fire on the next
// dispatch.
func (d *Dispatcher) Enqueue(p Pulse, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	d.mu.Lock()
	d.seq++
	heap.Push(&d.q, entry{fire: d.clock.Now() + delay, seq: d.seq, pulse: p})
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of pulses waiting.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.q)
}

// Due removes and returns every pulse whose fire time has passed, earliest
// first.
func (d *Dispatcher) Due() []Pulse {
	now := d.clock.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Pulse
	for len(d.q) > 0 && d.q[0].fire <= now {
		out = append(out, heap.Pop(&d.q).(entry).pulse)
	}
	return out
}

// next returns the wait until the earliest pulse, or false if empty.
func (d *Dispatcher) next() (time.Duration, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.q) == 0 {
		return 0, false
	}
	return d.q[0].fire - d.clock.Now(), true
}

// Flush delivers every due pulse and returns how many were delivered.
func (d *Dispatcher) Flush() int {
	due := d.Due()
	if d.deliver != nil {
		for _, p := range due {
			d.deliver(p)
		}
	}
	return len(due)
}

// Run delivers pulses as they come due. Blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		d.Flush()

		wait, ok := d.next()
		if !ok {
			wait = time.Hour
		}
		timer.Reset(max(wait, 0))

		select {
		case <-ctx.Done():
			return
		case <-d.wake:
		case <-timer.C:
		}
	}
}

package listview

import (
	"sync"
	"time"
)

type Timer interface {
	Stop() bool
}

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

var SystemClock Clock = realClock{}

// Debouncer delivers the last pushed value once pushes have stopped for the
// interval. Commit runs on the timer goroutine.
type Debouncer[V any] struct {
	mu       sync.Mutex
	interval time.Duration
	clock    Clock
	commit   func(V)

	timer   Timer
	pending V
	has     bool
	seq     uint64
	stopped bool
}

func NewDebouncer[V any](interval time.Duration, clock Clock, commit func(V)) *Debouncer[V] {
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer[V]{interval: interval, clock: clock, commit: commit}
}

func (d *Debouncer[V]) Push(v V) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = v
	d.has = true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.interval, func() { d.fire(seq) })
}

// fire ignores timers superseded by a later Push, even if Stop lost the race.
func (d *Debouncer[V]) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || !d.has || seq != d.seq {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.commit(v)
}

// Flush commits the pending value now, if any.
func (d *Debouncer[V]) Flush() {
	d.mu.Lock()
	if d.stopped || !d.has {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	v := d.take()
	d.mu.Unlock()
	d.commit(v)
}

func (d *Debouncer[V]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.has
}

// Stop drops any pending value; later pushes are ignored.
func (d *Debouncer[V]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.has = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer[V]) take() V {
	var zero V
	v := d.pending
	d.pending = zero
	d.has = false
	return v
}

package effect

import "sync/atomic"

// DefaultCapacity bounds the number of effects held while no observer is
// attached.
const DefaultCapacity = 64

// Queue delivers effects to at most one active observer.
//
// Concurrency model: a single internal loop goroutine owns the pending FIFO
// and the active observer. Public methods talk to the loop over channels.
// Delivery is a hand-off on the observer's unbuffered channel, so an effect
// is consumed exactly when the observer receives it and is never replayed.
type Queue struct {
	capacity int

	emitCh    chan Effect
	observeCh chan chan Effect
	detachCh  chan chan Effect
	pendingCh chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
	dropped atomic.Int64
}

// NewQueue starts a queue holding at most capacity undelivered effects.
// When full, the oldest pending effect is dropped.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	q := &Queue{
		capacity:  capacity,
		emitCh:    make(chan Effect),
		observeCh: make(chan chan Effect),
		detachCh:  make(chan chan Effect),
		pendingCh: make(chan chan int),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.stopped)

	var (
		pending  []Effect
		observer chan Effect
	)

	push := func(e Effect) {
		if len(pending) >= q.capacity {
			pending = pending[1:]
			q.dropped.Add(1)
		}
		pending = append(pending, e)
	}

	for {
		// The send case is only armed when there is both an observer and
		// something to hand it.
		var out chan Effect
		var next Effect
		if observer != nil && len(pending) > 0 {
			out = observer
			next = pending[0]
		}

		select {
		case <-q.stopCh:
			if observer != nil {
				close(observer)
			}
			return

		case ch := <-q.observeCh:
			if observer != nil {
				close(observer)
			}
			observer = ch

		case ch := <-q.detachCh:
			if ch == observer {
				close(observer)
				observer = nil
			}

		case e := <-q.emitCh:
			push(e)

		case out <- next:
			pending[0] = Effect{}
			pending = pending[1:]

		case resp := <-q.pendingCh:
			resp <- len(pending)
		}
	}
}

// Emit queues an effect for the active (or next) observer. It never blocks on
// the observer.
func (q *Queue) Emit(e Effect) {
	if q.closed.Load() {
		return
	}
	select {
	case q.emitCh <- e:
	case <-q.stopped:
	}
}

// Observe attaches a new active observer and returns its channel together
// with a detach function. Any previous observer is detached and its channel
// closed. The returned channel is closed on detach or when the queue closes.
func (q *Queue) Observe() (<-chan Effect, func()) {
	ch := make(chan Effect)
	if q.closed.Load() {
		close(ch)
		return ch, func() {}
	}

	select {
	case q.observeCh <- ch:
	case <-q.stopped:
		close(ch)
		return ch, func() {}
	}

	detach := func() {
		if q.closed.Load() {
			return
		}
		select {
		case q.detachCh <- ch:
		case <-q.stopped:
		}
	}
	return ch, detach
}

// Pending returns the number of effects waiting for an observer.
func (q *Queue) Pending() int {
	if q.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case q.pendingCh <- resp:
	case <-q.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-q.stopped:
		return 0
	}
}

// Dropped returns how many effects were discarded because the pending FIFO
// was full.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}

// Close stops the loop and closes the active observer channel.
func (q *Queue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.stopCh)
	}
	<-q.stopped
}

// Package executor defines the execution-context contract used to model the
// host application's thread affinity. User-agent resolution and observer
// delivery must run on the host's UI loop; the requester only ever sees the
// Executor interface, so tests can substitute Inline and hosts can bridge to
// their real main-thread dispatcher.
package executor

import "sync"

// Executor runs a function on a specific execution context.
type Executor interface {
	Do(fn func())
}

// Inline runs the function on the calling goroutine. Default for tests and
// for hosts without thread-affinity requirements.
type Inline struct{}

var _ Executor = (*Inline)(nil)

func (Inline) Do(fn func()) {
	if fn != nil {
		fn()
	}
}

// Serial runs submitted functions one at a time, in order, on a single
// dedicated goroutine. It stands in for a host UI loop: everything submitted
// observes everything previously submitted.
type Serial struct {
	once sync.Once
	jobs chan func()
	done chan struct{}
}

var _ Executor = (*Serial)(nil)

// NewSerial starts the loop goroutine and returns the executor.
func NewSerial() *Serial {
	s := &Serial{
		jobs: make(chan func(), 64),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Serial) loop() {
	for fn := range s.jobs {
		if fn != nil {
			fn()
		}
	}
	close(s.done)
}

// Do submits fn to the loop. Submissions after Close are dropped.
func (s *Serial) Do(fn func()) {
	defer func() {
		// Swallow sends raced against Close.
		_ = recover()
	}()
	s.jobs <- fn
}

// Close stops the loop after draining already-submitted work and waits for
// the loop goroutine to exit.
func (s *Serial) Close() {
	s.once.Do(func() {
		close(s.jobs)
	})
	<-s.done
}

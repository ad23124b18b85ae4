// Package eventloop serializes game commands and timer callbacks onto a single goroutine.
package eventloop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/WingsGames/Neve-Or/internal/errors"
)

var (
	ErrStopped      = errors.NewSentinel("event loop stopped")
	ErrTaskPanicked = errors.NewSentinel("event loop task panicked")
)

// Token identifies a scheduled callback so that it can be cancelled.
type Token uint64

// Scheduler runs callbacks after a delay on the owner's goroutine.
type Scheduler interface {
	After(d time.Duration, fn func()) Token
	Cancel(token Token)
}

// Loop runs every posted task and every timer callback sequentially on the goroutine that called Start.
type Loop struct {
	tasks  chan func()
	stop   chan struct{}
	done   chan struct{}
	logger *slog.Logger

	mu     sync.Mutex
	timers map[Token]*time.Timer
	next   Token
	once   sync.Once
}

func New(logger *slog.Logger) *Loop {
	return &Loop{
		tasks:  make(chan func()),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger.With("source", "Loop"),
		timers: map[Token]*time.Timer{},
	}
}

// Start runs tasks until Stop is called. It blocks, so it should be called in a goroutine.
func (l *Loop) Start() {
	defer close(l.done)
	for {
		select {
		case <-l.stop:
			return
		case task := <-l.tasks:
			l.run(task)
		}
	}
}

func (l *Loop) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.New(fmt.Sprintf("panic in event loop task: %v", r))
			l.logger.LogAttrs(context.Background(), slog.LevelError, "recovered task panic", errors.SlogError(err))
		}
	}()
	task()
}

// Stop cancels pending timers and stops the loop. It waits for the running task to finish.
func (l *Loop) Stop() {
	l.once.Do(func() {
		l.mu.Lock()
		for token, timer := range l.timers {
			timer.Stop()
			delete(l.timers, token)
		}
		l.mu.Unlock()
		close(l.stop)
	})
	<-l.done
}

// Post queues fn. It returns false when the loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.tasks <- fn:
		return true
	case <-l.stop:
		return false
	}
}

// Do runs fn on the loop and waits for its result. It must not be called from a loop task.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() {
		err := ErrTaskPanicked
		defer func() { result <- err }()
		err = fn()
	}
	select {
	case l.tasks <- task:
	case <-l.stop:
		return ErrStopped
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "post task")
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for task")
	}
}

// After posts fn to the loop once d has elapsed unless the token is cancelled first.
func (l *Loop) After(d time.Duration, fn func()) Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	token := l.next
	l.timers[token] = time.AfterFunc(d, func() {
		l.Post(func() {
			// A timer that fired while Cancel was queued must not run.
			l.mu.Lock()
			_, live := l.timers[token]
			delete(l.timers, token)
			l.mu.Unlock()
			if live {
				fn()
			}
		})
	})
	return token
}

// Cancel stops the callback scheduled with token. Cancelling a finished or unknown token is a no-op.
func (l *Loop) Cancel(token Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if timer, ok := l.timers[token]; ok {
		timer.Stop()
		delete(l.timers, token)
	}
}

// Single goroutine, locked to an os thread, that runs all ui work in order.
package uiloop

import (
	"errors"
	"runtime"
	"sync"
)

var ErrStopped = errors.New("uiloop: stopped")

type Loop struct {
	q        chan func()
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func New() *Loop {
	l := &Loop{
		q:    make(chan func(), 64),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.loop()
	return l
}

func (l *Loop) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(l.done)
	for {
		select {
		case fn := <-l.q:
			fn()
		case <-l.stop:
			// run what was already queued
			for {
				select {
				case fn := <-l.q:
					fn()
				default:
					return
				}
			}
		}
	}
}

//----------

// Post schedules fn without waiting. Returns false if the loop is stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stop:
		return false
	default:
	}
	select {
	case l.q <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run schedules fn and waits for it to complete. Must not be called from the loop goroutine.
func (l *Loop) Run(fn func() error) error {
	errc := make(chan error, 1)
	if !l.Post(func() { errc <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-errc:
		return err
	case <-l.done:
		select {
		case err := <-errc:
			return err
		default:
			return ErrStopped
		}
	}
}

// Stop runs the pending work and ends the loop. Waits for the loop to exit.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Package loggingtest provides a logger for tests that can wait for
// and count the entries written to it.
package loggingtest

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zalando/storefront/logging"
)

type logSubscription struct {
	exp      string
	n        int
	response chan<- struct{}
}

type countMessage struct {
	exp      string
	response chan<- int
}

type logWatch struct {
	entries []string
	reqs    []*logSubscription
}

// TestLogger implements logging.Logger, and stores the entries in
// memory.
type TestLogger struct {
	save   chan string
	notify chan<- logSubscription
	count  chan<- countMessage
	clear  chan struct{}
	quit   chan<- struct{}
	muted  *atomic.Bool
}

var _ logging.Logger = &TestLogger{}

var ErrWaitTimeout = errors.New("timeout")

func (lw *logWatch) save(e string) {
	lw.entries = append(lw.entries, e)
	for i := len(lw.reqs) - 1; i >= 0; i-- {
		req := lw.reqs[i]
		if strings.Contains(e, req.exp) {
			req.n--
			if req.n <= 0 {
				close(req.response)
				lw.reqs = append(lw.reqs[:i], lw.reqs[i+1:]...)
			}
		}
	}
}

func (lw *logWatch) notify(req logSubscription) {
	for i := len(lw.entries) - 1; i >= 0; i-- {
		if strings.Contains(lw.entries[i], req.exp) {
			req.n--
			if req.n == 0 {
				break
			}
		}
	}

	if req.n <= 0 {
		close(req.response)
	} else {
		lw.reqs = append(lw.reqs, &req)
	}
}

func (lw *logWatch) count(m countMessage) {
	var count int
	for _, e := range lw.entries {
		if strings.Contains(e, m.exp) {
			count++
		}
	}

	m.response <- count
}

func (lw *logWatch) clear() {
	lw.entries = nil
	lw.reqs = nil
}

// New creates a test logger. It needs to be closed.
func New() *TestLogger {
	lw := &logWatch{}
	save := make(chan string)
	notify := make(chan logSubscription)
	count := make(chan countMessage)
	clear := make(chan struct{})
	quit := make(chan struct{})

	go func() {
		for {
			select {
			case e := <-save:
				lw.save(e)
			case req := <-notify:
				lw.notify(req)
			case m := <-count:
				lw.count(m)
			case <-clear:
				lw.clear()
			case <-quit:
				return
			}
		}
	}()

	return &TestLogger{
		save:   save,
		notify: notify,
		count:  count,
		clear:  clear,
		quit:   quit,
		muted:  &atomic.Bool{},
	}
}

func (tl *TestLogger) logf(f string, a ...any) {
	tl.log(fmt.Sprintf(f, a...))
}

func (tl *TestLogger) log(a ...any) {
	if tl.muted.Load() {
		return
	}

	e := fmt.Sprint(a...)
	log.Println(e)
	tl.save <- e
}

// WaitForN blocks until exp appeared n times in the entries, or the
// timeout expires.
func (tl *TestLogger) WaitForN(exp string, n int, to time.Duration) error {
	found := make(chan struct{}, 1)
	tl.notify <- logSubscription{exp, n, found}

	select {
	case <-found:
		return nil
	case <-time.After(to):
		return ErrWaitTimeout
	}
}

// WaitFor blocks until exp appeared once in the entries, or the
// timeout expires.
func (tl *TestLogger) WaitFor(exp string, to time.Duration) error {
	return tl.WaitForN(exp, 1, to)
}

// Count returns how many entries contain exp.
func (tl *TestLogger) Count(exp string) int {
	rsp := make(chan int, 1)
	tl.count <- countMessage{exp, rsp}
	return <-rsp
}

// Reset drops the stored entries and the pending subscriptions.
func (tl *TestLogger) Reset() {
	tl.clear <- struct{}{}
}

// Mute stops storing entries until Unmute is called.
func (tl *TestLogger) Mute()   { tl.muted.Store(true) }
func (tl *TestLogger) Unmute() { tl.muted.Store(false) }

// Close stops the logger.
func (tl *TestLogger) Close() {
	close(tl.quit)
}

func (tl *TestLogger) Error(a ...any)            { tl.log(a...) }
func (tl *TestLogger) Errorf(f string, a ...any) { tl.logf(f, a...) }
func (tl *TestLogger) Warn(a ...any)             { tl.log(a...) }
func (tl *TestLogger) Warnf(f string, a ...any)  { tl.logf(f, a...) }
func (tl *TestLogger) Info(a ...any)             { tl.log(a...) }
func (tl *TestLogger) Infof(f string, a ...any)  { tl.logf(f, a...) }
func (tl *TestLogger) Debug(a ...any)            { tl.log(a...) }
func (tl *TestLogger) Debugf(f string, a ...any) { tl.logf(f, a...) }

// WithFields returns the same logger, the fields are not stored.
func (tl *TestLogger) WithFields(map[string]any) logging.Logger { return tl }

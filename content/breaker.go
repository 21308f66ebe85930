package content

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = 10 * time.Second
)

// breaker opens after a number of consecutive failed fetches, and lets
// a single probe request through after the timeout.
type breaker struct {
	failures int
	gb       *gobreaker.TwoStepCircuitBreaker
}

func newBreaker(name string, failures int, timeout time.Duration) *breaker {
	if failures <= 0 {
		failures = DefaultBreakerFailures
	}

	if timeout <= 0 {
		timeout = DefaultBreakerTimeout
	}

	b := &breaker{failures: failures}
	b.gb = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: b.readyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Infof("circuit breaker %v went from %v to %v", name, from.String(), to.String())
		},
	})

	return b
}

func (b *breaker) readyToTrip(c gobreaker.Counts) bool {
	return int(c.ConsecutiveFailures) >= b.failures
}

// allow returns a function to report the outcome of the request, or
// false when the breaker is open.
func (b *breaker) allow() (func(bool), bool) {
	done, err := b.gb.Allow()

	// this error can only indicate that the breaker is not closed
	if err != nil {
		return nil, false
	}

	return done, true
}

func (b *breaker) state() gobreaker.State {
	return b.gb.State()
}

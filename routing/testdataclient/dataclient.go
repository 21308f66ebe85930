/*
Package testdataclient provides an in-memory registration source for
tests.

The registrations can be updated and the loads can be failed on demand,
while the routing polls the client.
*/
package testdataclient

import (
	"errors"
	"sync"

	"github.com/zalando/storefront/regfile"
	"github.com/zalando/storefront/routing"
)

// ErrFailingLoad is returned by LoadAll after FailNext.
var ErrFailingLoad = errors.New("failing load")

// Client is an in-memory registration source.
type Client struct {
	mu            sync.Mutex
	name          string
	registrations []*routing.Registration
	failNext      int
	loads         int
}

var _ routing.DataClient = &Client{}

// New creates a data client with the initial registrations.
func New(registrations []*routing.Registration) *Client {
	return &Client{name: "test", registrations: registrations}
}

// NewDoc creates a data client from a YAML registration document.
func NewDoc(doc string) (*Client, error) {
	registrations, err := regfile.Parse([]byte(doc))
	if err != nil {
		return nil, err
	}

	return New(registrations), nil
}

// Named sets the name that the routing reports the client with.
func (c *Client) Named(name string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	return c
}

func id(r *routing.Registration) string {
	if r.Id != "" {
		return r.Id
	}

	return r.Pattern
}

// LoadAll returns the current registrations, or ErrFailingLoad when a
// failure was requested with FailNext.
func (c *Client) LoadAll() ([]*routing.Registration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loads++
	if c.failNext > 0 {
		c.failNext--
		return nil, ErrFailingLoad
	}

	return append([]*routing.Registration(nil), c.registrations...), nil
}

// Update replaces the registrations with the same id as the upserted
// ones, appends the new ones, and removes the deleted ids.
func (c *Client) Update(upsert []*routing.Registration, deletedIds []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := make(map[string]bool)
	for _, d := range deletedIds {
		deleted[d] = true
	}

	upserted := make(map[string]*routing.Registration)
	for _, r := range upsert {
		upserted[id(r)] = r
	}

	var next []*routing.Registration
	for _, r := range c.registrations {
		rid := id(r)
		if deleted[rid] {
			continue
		}

		if u, ok := upserted[rid]; ok {
			next = append(next, u)
			delete(upserted, rid)
			continue
		}

		next = append(next, r)
	}

	for _, r := range upsert {
		if _, ok := upserted[id(r)]; ok {
			next = append(next, r)
		}
	}

	c.registrations = next
}

// UpdateDoc replaces all registrations with the ones in a YAML
// registration document.
func (c *Client) UpdateDoc(doc string) error {
	registrations, err := regfile.Parse([]byte(doc))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations = registrations
	return nil
}

// FailNext makes the next n loads fail.
func (c *Client) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext = n
}

// Loads returns the number of the LoadAll calls so far.
func (c *Client) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

func (c *Client) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

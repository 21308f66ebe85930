package routing

import (
	"fmt"
)

// DataClient instances provide complete registration sets. Every call
// to LoadAll returns the full current set of the source, the routing
// never applies partial updates.
type DataClient interface {
	LoadAll() ([]*Registration, error)
}

// DataClientFunc adapts a function to the DataClient interface.
type DataClientFunc func() ([]*Registration, error)

func (f DataClientFunc) LoadAll() ([]*Registration, error) { return f() }

func sourceName(c DataClient) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%T", c)
}

// mergeRegistrations concatenates the sets in the order of the
// sources. A registration with an id that was already seen replaces the
// earlier one at its original position.
func mergeRegistrations(sets [][]*Registration) []*Registration {
	var all []*Registration
	index := make(map[string]int)
	for _, set := range sets {
		for _, r := range set {
			if r == nil {
				continue
			}

			id := r.id()
			if i, ok := index[id]; ok {
				all[i] = r
				continue
			}

			index[id] = len(all)
			all = append(all, r)
		}
	}

	return all
}

package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zalando/storefront/routing"
)

func TestTree(t *testing.T) {
	g := routing.Build(append([]*routing.Registration{
		literal("/about", "4"),
		wildcard("*y*", "5"),
		wildcard("/shop/y*", "6"),
	}, shopRegistrations...))

	assert.Equal(t, `literals:
  / -> 1
  /about -> 4
wildcards:
  *y* -> 5
    /shop/y* -> 6
  /shop/* -> 2
    /shop/y* -> 6
    /shop/sale/* -> 3
default: 99
`, g.Tree())
}

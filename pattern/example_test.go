package pattern_test

import (
	"fmt"

	"github.com/zalando/storefront/pattern"
)

func ExampleCompile() {
	for _, c := range []struct{ raw, path string }{
		{"/shop/*", "/shop/"},
		{"/shop/*", "/shop/sale/winter"},
		{"/shop/*/details", "/shop/jackets/details"},
		{"/shop/*/details", "/shop/jackets"},
		{"*.html", "/about.html"},
	} {
		fmt.Println(c.raw, c.path, pattern.Compile(c.raw, false).Match(c.path))
	}

	// Output:
	// /shop/* /shop/ true
	// /shop/* /shop/sale/winter true
	// /shop/*/details /shop/jackets/details true
	// /shop/*/details /shop/jackets false
	// *.html /about.html true
}

/*
Package storefront provides the content-URL resolver of the storefront,
served over HTTP.

The storefront maps the request paths to content registrations, and
responds with the content that the matching registration points to. The
registrations are literal paths, landing pages or wildcard patterns,
where '*' matches any sequence of characters, including slashes:

	registrations:
	  - pattern: /
	    content: "1"
	  - pattern: /shop/*
	    content: "2"
	  - pattern: /shop/sale/*
	    content: "3"
	  - pattern: "*"
	    content: "99"

Literal registrations always win. Among the wildcard registrations, the
most specific one accepting the path wins: the registrations form a
containment graph, where a pattern is broader than another one when it
accepts the text of the other pattern. With the above registrations:

	/                   ->  1
	/shop/jackets       ->  2
	/shop/sale/jackets  ->  3
	/about              ->  99, the default registration

The registrations are loaded from YAML files or inline definitions, and
they are reloaded periodically. The routing structures are rebuilt from
the complete registration set whenever it changes, and the new
generation replaces the current one atomically, without blocking the
lookups.

The content records are fetched from an HTTP API, and cached in process,
and optionally in Redis.

# Quickstart

Create a registration file:

	cat > registrations.yaml <<EOF
	registrations:
	  - pattern: /shop/*
	    content: "2"
	EOF

Start the storefront, and make a request:

	storefront -registrations-file registrations.yaml -content-backend-url http://localhost:9000/content &
	curl localhost:9090/shop/jackets

The support listener serves the metrics on /metrics, the current
routing on /routes, and the health check on /healthz:

	curl localhost:9911/routes

For the list of the command line options, run:

	storefront -help

# Packages

The pattern package compiles the registration patterns. The routing
package builds the generations and keeps them up to date from the
registration sources, e.g. the ones in the regfile package. The content
package provides the records, and the proxy package serves the HTTP
requests.
*/
package storefront

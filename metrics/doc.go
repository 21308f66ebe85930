/*
Package metrics implements collection of the storefront metrics.

Two formats are supported. The Prometheus format uses the official
client library:

https://github.com/prometheus/client_golang

and the CodaHale format uses the Go implementation of the Coda Hale
metrics library:

https://github.com/dropwizard/metrics

The collected metrics include the time of looking up registrations,
split by how the path was matched, the number of routing rebuilds, the
size of the current literal index, containment graph and default slot,
the content cache hits and misses per tier, the content fetch times and
the registration source errors.

The metrics are exposed on the support listener, on the path passed to
RegisterHandler.
*/
package metrics

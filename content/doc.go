/*
Package content provides the content records that the resolved
registrations point to.

The Store looks up a record in a short-lived in-process cache first,
then, when configured, in a shared Redis cache, and finally fetches it
from the content backend. Fetched records populate both cache tiers.
Records that the backend doesn't know are not cached.

HTTPFetcher fetches the records from a JSON API:

	GET {base}/{id}
	Accept: application/json

	{"id": "2", "type": "category", "title": "Shop", "body": {...}}

The id of the returned record has to match the requested one. Failed
requests are retried with exponential backoff, and the requests are
guarded by a circuit breaker. While the breaker is open, the fetcher
returns ErrUnavailable without calling the backend.
*/
package content
